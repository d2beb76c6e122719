package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Age bounds accepted for a complaint author.
const (
	MinAge = 0
	MaxAge = 150
)

var (
	ErrEmptyName         = errors.New("name is required")
	ErrEmptyProblem      = errors.New("problem is required")
	ErrAgeOutOfRange     = fmt.Errorf("age must be between %d and %d", MinAge, MaxAge)
	ErrEmptyPhoto        = errors.New("photo data is empty")
	ErrPhotoType         = errors.New("unsupported media type")
	ErrPhotoTooLarge     = errors.New("payload too large")
	ErrPhotoSizeMismatch = errors.New("photo size does not match data length")
)

// Complaint is a citizen complaint. Records are append-only.
type Complaint struct {
	ID        int64       `json:"id,string"`
	Name      string      `json:"name"`
	Age       int         `json:"age"`
	Problem   string      `json:"problem"`
	Photo     *Attachment `json:"photo"`
	CreatedAt time.Time   `json:"created_at"`
}

// HasPhoto reports whether the complaint carries an attachment.
func (c *Complaint) HasPhoto() bool {
	return c.Photo != nil
}

// Validate checks the record invariants every store enforces before a write.
func (c *Complaint) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(c.Problem) == "" {
		return ErrEmptyProblem
	}
	if c.Age < MinAge || c.Age > MaxAge {
		return ErrAgeOutOfRange
	}
	if c.Photo == nil {
		return nil
	}
	if len(c.Photo.Data) == 0 {
		return ErrEmptyPhoto
	}
	if !IsAllowedPhotoType(c.Photo.ContentType) {
		return ErrPhotoType
	}
	if len(c.Photo.Data) > MaxPhotoSize {
		return ErrPhotoTooLarge
	}
	if c.Photo.Size != int64(len(c.Photo.Data)) {
		return ErrPhotoSizeMismatch
	}
	return nil
}
