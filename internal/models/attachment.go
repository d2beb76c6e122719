package models

import "strings"

// MaxPhotoSize is the largest photo a complaint may carry.
const MaxPhotoSize = 10 << 20 // 10 MiB

var allowedPhotoTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Attachment is the binary photo stored inline with a complaint.
type Attachment struct {
	Data        []byte `json:"data"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// NewAttachment wraps data without copying it.
func NewAttachment(data []byte, contentType string) *Attachment {
	return &Attachment{
		Data:        data,
		ContentType: NormalizeContentType(contentType),
		Size:        int64(len(data)),
	}
}

// NormalizeContentType strips media type parameters and lower-cases the result,
// so "Image/PNG; charset=binary" becomes "image/png".
func NormalizeContentType(ct string) string {
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}

// IsAllowedPhotoType reports whether ct is one of the accepted image types.
func IsAllowedPhotoType(ct string) bool {
	return allowedPhotoTypes[NormalizeContentType(ct)]
}

// AllowedPhotoTypes lists the accepted content types in a stable order.
func AllowedPhotoTypes() []string {
	return []string{"image/jpeg", "image/png", "image/gif", "image/webp"}
}
