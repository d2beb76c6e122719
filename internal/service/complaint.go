package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/victorivanov/complaintbox/internal/database"
	"github.com/victorivanov/complaintbox/internal/models"
)

// Error codes returned to clients.
const (
	CodeInvalidInput         = "INVALID_INPUT"
	CodeUnsupportedMediaType = "UNSUPPORTED_MEDIA_TYPE"
	CodePayloadTooLarge      = "PAYLOAD_TOO_LARGE"
	CodeStoreUnavailable     = "STORE_UNAVAILABLE"
	CodeRateLimited          = "RATE_LIMITED"
	CodeInternal             = "INTERNAL"
)

// PhotoUpload is a received photo before it is read into memory.
type PhotoUpload struct {
	ContentType string
	// Size is the length declared by the transport; the read is still bounded.
	Size   int64
	Reader io.Reader
}

// SubmitInput holds the raw form values of a complaint submission.
type SubmitInput struct {
	Name    string
	Age     string
	Problem string
	Photo   *PhotoUpload
}

// ComplaintService validates submissions and hands them to the record store.
type ComplaintService struct {
	complaints database.ComplaintRepository
}

// NewComplaintService creates a ComplaintService.
func NewComplaintService(complaints database.ComplaintRepository) *ComplaintService {
	return &ComplaintService{complaints: complaints}
}

// Submit validates in and persists a new complaint. Nothing is written unless
// every check passes. Store failures are returned immediately, without retry.
func (s *ComplaintService) Submit(ctx context.Context, in SubmitInput) (*models.Complaint, error) {
	complaint, err := parseFields(in)
	if err != nil {
		return nil, err
	}

	if in.Photo != nil {
		photo, err := readPhoto(in.Photo)
		if err != nil {
			return nil, err
		}
		complaint.Photo = photo
	}

	if err := s.complaints.Create(ctx, complaint); err != nil {
		slog.Error("failed to create complaint", "error", err)
		if errors.Is(err, database.ErrValidationRejected) {
			return nil, Internal(CodeStoreUnavailable, "complaint was rejected by the store")
		}
		return nil, Internal(CodeStoreUnavailable, "failed to save complaint")
	}

	return complaint, nil
}

// List returns every complaint, newest first.
func (s *ComplaintService) List(ctx context.Context) ([]models.Complaint, error) {
	items, err := s.complaints.ListAll(ctx)
	if err != nil {
		slog.Error("failed to list complaints", "error", err)
		return nil, Internal(CodeStoreUnavailable, "failed to load complaints")
	}
	return items, nil
}

// parseFields checks the required text fields and reports every bad one at once.
func parseFields(in SubmitInput) (*models.Complaint, error) {
	name := strings.TrimSpace(in.Name)
	problem := strings.TrimSpace(in.Problem)
	ageStr := strings.TrimSpace(in.Age)

	var problems []string
	if name == "" {
		problems = append(problems, "name (required)")
	}

	age := 0
	if ageStr == "" {
		problems = append(problems, "age (required)")
	} else if n, err := strconv.Atoi(ageStr); err != nil {
		problems = append(problems, "age (must be an integer)")
	} else if n < models.MinAge || n > models.MaxAge {
		problems = append(problems, fmt.Sprintf("age (must be between %d and %d)", models.MinAge, models.MaxAge))
	} else {
		age = n
	}

	if problem == "" {
		problems = append(problems, "problem (required)")
	}

	if len(problems) > 0 {
		return nil, BadRequest(CodeInvalidInput, "invalid fields: "+strings.Join(problems, ", "))
	}

	return &models.Complaint{Name: name, Age: age, Problem: problem}, nil
}

// readPhoto checks the declared type and size, then reads the content fully
// into memory so the record never references transport buffers or temp files.
func readPhoto(p *PhotoUpload) (*models.Attachment, error) {
	if !models.IsAllowedPhotoType(p.ContentType) {
		return nil, BadRequest(CodeUnsupportedMediaType, "unsupported media type")
	}
	if p.Size > models.MaxPhotoSize {
		return nil, BadRequest(CodePayloadTooLarge, "payload too large")
	}

	// Read one byte past the ceiling to catch an understated declared size.
	data, err := io.ReadAll(io.LimitReader(p.Reader, models.MaxPhotoSize+1))
	if err != nil {
		slog.Error("failed to read photo", "error", err)
		return nil, Internal(CodeInternal, "failed to read photo")
	}
	if len(data) > models.MaxPhotoSize {
		return nil, BadRequest(CodePayloadTooLarge, "payload too large")
	}
	if len(data) == 0 {
		return nil, BadRequest(CodeInvalidInput, "photo is empty")
	}

	return models.NewAttachment(data, p.ContentType), nil
}
