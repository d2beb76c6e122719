package database

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/victorivanov/complaintbox/internal/models"
)

// The helpers below run against any ComplaintRepository so both backends
// share the same behavioral checks.

func checkCreateWithoutPhoto(t *testing.T, repo ComplaintRepository) {
	t.Helper()
	ctx := context.Background()

	c := newTestComplaint("no-photo")
	if err := repo.Create(ctx, c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if c.ID == 0 {
		t.Fatal("expected ID to be assigned")
	}
	if c.CreatedAt.IsZero() {
		t.Fatal("expected CreatedAt to be assigned")
	}

	got := findComplaint(t, repo, c.ID)
	if got.Photo != nil {
		t.Fatalf("expected absent photo, got %+v", got.Photo)
	}
	if got.Name != c.Name || got.Age != c.Age || got.Problem != c.Problem {
		t.Errorf("stored record = %+v, want %+v", got, c)
	}
}

func checkPhotoRoundTrip(t *testing.T, repo ComplaintRepository) {
	t.Helper()
	ctx := context.Background()

	payload := make([]byte, 64<<10)
	for i := range payload {
		payload[i] = byte(i * 31)
	}
	c := newTestComplaint("with-photo")
	c.Photo = models.NewAttachment(payload, "image/jpeg")
	if err := repo.Create(ctx, c); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got := findComplaint(t, repo, c.ID)
	if got.Photo == nil {
		t.Fatal("expected photo to be present")
	}
	if !bytes.Equal(got.Photo.Data, payload) {
		t.Error("photo bytes differ after round trip")
	}
	if got.Photo.ContentType != "image/jpeg" {
		t.Errorf("ContentType = %q, want image/jpeg", got.Photo.ContentType)
	}
	if got.Photo.Size != int64(len(payload)) {
		t.Errorf("Size = %d, want %d", got.Photo.Size, len(payload))
	}
}

func checkRejectsInvalid(t *testing.T, repo ComplaintRepository) {
	t.Helper()
	ctx := context.Background()

	before, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}

	bad := []*models.Complaint{
		{Name: "", Age: 20, Problem: "x"},
		{Name: "a", Age: 20, Problem: "x", Photo: &models.Attachment{ContentType: "image/png"}},
		{Name: "a", Age: 20, Problem: "x", Photo: models.NewAttachment([]byte("%PDF"), "application/pdf")},
	}
	for i, c := range bad {
		err := repo.Create(ctx, c)
		if !errors.Is(err, ErrValidationRejected) {
			t.Errorf("record %d: expected ErrValidationRejected, got %v", i, err)
		}
	}

	after, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(after) != len(before) {
		t.Errorf("rejected records were stored: %d -> %d", len(before), len(after))
	}
}

func checkNewestFirst(t *testing.T, repo ComplaintRepository) {
	t.Helper()
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Microsecond)
	offsets := []time.Duration{2 * time.Second, 0, 5 * time.Second, 2 * time.Second, time.Second}
	var tied []int64
	for i, off := range offsets {
		c := newTestComplaint("ordered")
		c.CreatedAt = base.Add(off)
		if err := repo.Create(ctx, c); err != nil {
			t.Fatalf("Create %d: %v", i, err)
		}
		if off == 2*time.Second {
			tied = append(tied, c.ID)
		}
	}

	items, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	for i := 1; i < len(items); i++ {
		if items[i].CreatedAt.After(items[i-1].CreatedAt) {
			t.Fatalf("items[%d] newer than items[%d]: %v > %v", i, i-1, items[i].CreatedAt, items[i-1].CreatedAt)
		}
	}

	var seen []int64
	for _, it := range items {
		if it.ID == tied[0] || it.ID == tied[1] {
			seen = append(seen, it.ID)
		}
	}
	if len(seen) != 2 || seen[0] != tied[0] || seen[1] != tied[1] {
		t.Errorf("tie not in insertion order: got %v, want %v", seen, tied)
	}
}

func checkConcurrentCreate(t *testing.T, repo ComplaintRepository) {
	t.Helper()
	ctx := context.Background()

	const workers = 20
	photo := []byte("GIF89a-not-really")

	var wg sync.WaitGroup
	ids := make([]int64, workers)
	errs := make([]error, workers)
	wg.Add(workers)
	for i := range workers {
		go func() {
			defer wg.Done()
			c := newTestComplaint("concurrent")
			c.Photo = models.NewAttachment(append([]byte(nil), photo...), "image/gif")
			errs[i] = repo.Create(ctx, c)
			ids[i] = c.ID
		}()
	}

	// Readers running alongside the writers must never see half a record.
	done := make(chan struct{})
	readerErr := make(chan error, 1)
	go func() {
		defer close(readerErr)
		for {
			select {
			case <-done:
				return
			default:
			}
			items, err := repo.ListAll(ctx)
			if err != nil {
				readerErr <- err
				return
			}
			for _, it := range items {
				if it.Photo != nil && (len(it.Photo.Data) == 0 || it.Photo.ContentType == "") {
					readerErr <- errors.New("observed partially written photo")
					return
				}
			}
		}
	}()

	wg.Wait()
	close(done)
	if err := <-readerErr; err != nil {
		t.Fatalf("concurrent reader: %v", err)
	}

	seen := make(map[int64]bool, workers)
	for i := range workers {
		if errs[i] != nil {
			t.Fatalf("Create %d: %v", i, errs[i])
		}
		if seen[ids[i]] {
			t.Fatalf("duplicate ID %d", ids[i])
		}
		seen[ids[i]] = true
	}
}

func findComplaint(t *testing.T, repo ComplaintRepository, id int64) models.Complaint {
	t.Helper()
	items, err := repo.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	for _, it := range items {
		if it.ID == id {
			return it
		}
	}
	t.Fatalf("complaint %d not found", id)
	return models.Complaint{}
}
