package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/victorivanov/complaintbox/internal/models"
	"github.com/victorivanov/complaintbox/internal/service"
)

const (
	// maxRequestBody caps the whole submission body. Photos over the photo
	// limit but under this cap are counted to the end, so the field and
	// media type checks still run before the size check.
	maxRequestBody = 4 * models.MaxPhotoSize
	// maxFieldSize bounds a single text field.
	maxFieldSize = 1 << 20
)

var (
	errInvalidForm   = errors.New("invalid multipart form")
	errInvalidJSON   = errors.New("invalid JSON body")
	errFieldTooLarge = errors.New("form field too large")
	errTooManyPhotos = errors.New("at most one photo may be attached")
)

// ComplaintHandler serves the complaint submission and listing endpoints.
type ComplaintHandler struct {
	service *service.ComplaintService
}

// NewComplaintHandler creates a ComplaintHandler.
func NewComplaintHandler(svc *service.ComplaintService) *ComplaintHandler {
	return &ComplaintHandler{service: svc}
}

type submitResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	ID      string `json:"id"`
}

type listResponse struct {
	Success bool               `json:"success"`
	Items   []models.Complaint `json:"items"`
}

// Submit handles POST /submit-complaint.
func (h *ComplaintHandler) Submit(c echo.Context) error {
	req := c.Request()
	req.Body = http.MaxBytesReader(c.Response(), req.Body, maxRequestBody)

	in, err := readSubmission(c)
	if err != nil {
		complaintsSubmitted.WithLabelValues(resultRejected).Inc()
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return Error(c, http.StatusBadRequest, service.CodePayloadTooLarge, "payload too large")
		}
		return Error(c, http.StatusBadRequest, service.CodeInvalidInput, err.Error())
	}

	complaint, err := h.service.Submit(req.Context(), in)
	if err != nil {
		if errors.Is(err, service.ErrBadRequest) {
			complaintsSubmitted.WithLabelValues(resultRejected).Inc()
		} else {
			complaintsSubmitted.WithLabelValues(resultFailed).Inc()
		}
		return mapServiceError(c, err)
	}

	complaintsSubmitted.WithLabelValues(resultAccepted).Inc()
	return c.JSON(http.StatusOK, submitResponse{
		Success: true,
		Message: "Complaint submitted successfully",
		ID:      strconv.FormatInt(complaint.ID, 10),
	})
}

// List handles GET /complaints.
func (h *ComplaintHandler) List(c echo.Context) error {
	items, err := h.service.List(c.Request().Context())
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(http.StatusOK, listResponse{Success: true, Items: items})
}

// readSubmission reads a multipart or JSON submission. Other body types carry
// no fields, so they fail the required-field checks downstream.
func readSubmission(c echo.Context) (service.SubmitInput, error) {
	mediaType, _, _ := mime.ParseMediaType(c.Request().Header.Get(echo.HeaderContentType))
	switch mediaType {
	case echo.MIMEMultipartForm:
		return readMultipart(c.Request())
	case echo.MIMEApplicationJSON:
		return readJSON(c)
	default:
		return service.SubmitInput{}, nil
	}
}

type jsonSubmission struct {
	Name    string  `json:"name"`
	Age     jsonAge `json:"age"`
	Problem string  `json:"problem"`
}

// jsonAge accepts a JSON number or string. Anything else is kept verbatim and
// fails the integer check.
type jsonAge string

func (a *jsonAge) UnmarshalJSON(data []byte) error {
	switch {
	case string(data) == "null":
		*a = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = jsonAge(s)
	default:
		*a = jsonAge(data)
	}
	return nil
}

func readJSON(c echo.Context) (service.SubmitInput, error) {
	var req jsonSubmission
	if err := c.Bind(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return service.SubmitInput{}, err
		}
		return service.SubmitInput{}, errInvalidJSON
	}
	return service.SubmitInput{Name: req.Name, Age: string(req.Age), Problem: req.Problem}, nil
}

// readMultipart streams the parts of a multipart body. Nothing is spilled to
// disk. The first value of each text field wins.
func readMultipart(req *http.Request) (service.SubmitInput, error) {
	var in service.SubmitInput
	mr, err := req.MultipartReader()
	if err != nil {
		return in, errInvalidForm
	}

	fields := make(map[string]string)
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return in, formError(err)
		}

		switch {
		case part.FileName() != "" && part.FormName() == "photo":
			if in.Photo != nil {
				return in, errTooManyPhotos
			}
			if in.Photo, err = readPhotoPart(part); err != nil {
				return in, formError(err)
			}
		case part.FileName() != "":
			if _, err := io.Copy(io.Discard, part); err != nil {
				return in, formError(err)
			}
		default:
			value, err := io.ReadAll(io.LimitReader(part, maxFieldSize+1))
			if err != nil {
				return in, formError(err)
			}
			if len(value) > maxFieldSize {
				return in, errFieldTooLarge
			}
			if _, ok := fields[part.FormName()]; !ok {
				fields[part.FormName()] = string(value)
			}
		}
	}

	in.Name = fields["name"]
	in.Age = fields["age"]
	in.Problem = fields["problem"]
	return in, nil
}

// readPhotoPart buffers at most one byte past the photo limit and counts the
// remainder, so the reported size is the real one.
func readPhotoPart(part *multipart.Part) (*service.PhotoUpload, error) {
	data, err := io.ReadAll(io.LimitReader(part, models.MaxPhotoSize+1))
	if err != nil {
		return nil, err
	}
	size := int64(len(data))
	if size > models.MaxPhotoSize {
		rest, err := io.Copy(io.Discard, part)
		if err != nil {
			return nil, err
		}
		size += rest
		data = nil
	}
	return &service.PhotoUpload{
		ContentType: part.Header.Get(echo.HeaderContentType),
		Size:        size,
		Reader:      bytes.NewReader(data),
	}, nil
}

func formError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return err
	}
	return errInvalidForm
}
