package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/victorivanov/complaintbox/internal/models"
	"github.com/victorivanov/complaintbox/internal/service"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

func newTestContext(method, path string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

// testPhoto describes the photo part of a multipart submission.
type testPhoto struct {
	filename    string
	contentType string
	data        []byte
}

// newSubmission builds a multipart body. Empty field values are omitted.
func newSubmission(t *testing.T, fields map[string]string, photos ...testPhoto) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		if v == "" {
			continue
		}
		if err := writer.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	for _, p := range photos {
		mh := make(textproto.MIMEHeader)
		mh.Set("Content-Disposition", fmt.Sprintf(`form-data; name="photo"; filename="%s"`, p.filename))
		mh.Set("Content-Type", p.contentType)
		part, err := writer.CreatePart(mh)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write(p.data); err != nil {
			t.Fatalf("write photo: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func newMultipartContext(t *testing.T, fields map[string]string, photos ...testPhoto) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	body, contentType := newSubmission(t, fields, photos...)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/submit-complaint", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func validFields() map[string]string {
	return map[string]string{"name": "Meera", "age": "29", "problem": "garbage not collected"}
}

// ---------------------------------------------------------------------------
// Mock repository
// ---------------------------------------------------------------------------

// mockComplaintRepo implements database.ComplaintRepository in memory.
type mockComplaintRepo struct {
	CreateFn  func(ctx context.Context, c *models.Complaint) error
	ListAllFn func(ctx context.Context) ([]models.Complaint, error)

	mu      sync.Mutex
	created []models.Complaint
}

func (m *mockComplaintRepo) Create(ctx context.Context, c *models.Complaint) error {
	if m.CreateFn != nil {
		if err := m.CreateFn(ctx, c); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == 0 {
		c.ID = int64(1000 + len(m.created))
	}
	m.created = append(m.created, *c)
	return nil
}

func (m *mockComplaintRepo) ListAll(ctx context.Context) ([]models.Complaint, error) {
	if m.ListAllFn != nil {
		return m.ListAllFn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Complaint{}, m.created...), nil
}

func (m *mockComplaintRepo) Ping(context.Context) error { return nil }
func (m *mockComplaintRepo) Close() error               { return nil }

func (m *mockComplaintRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.created)
}

func newTestHandler(repo *mockComplaintRepo) *ComplaintHandler {
	return NewComplaintHandler(service.NewComplaintService(repo))
}
