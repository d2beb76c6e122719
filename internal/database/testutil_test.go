package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/victorivanov/complaintbox/internal/models"
	"github.com/victorivanov/complaintbox/internal/snowflake"
)

// testPool returns a pgxpool.Pool connected to the test database.
// It skips the test if DATABASE_URL is not set. The schema is expected to be
// migrated already.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connecting to test database: %v", err)
	}
	t.Cleanup(func() { pool.Close() })
	return pool
}

func testSnowflake(t *testing.T) *snowflake.Generator {
	t.Helper()
	sf, err := snowflake.NewGenerator(7)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}
	return sf
}

func newTestBoltRepo(t *testing.T) ComplaintRepository {
	t.Helper()
	repo, err := OpenBoltRepository(filepath.Join(t.TempDir(), "complaints.db"), testSnowflake(t))
	if err != nil {
		t.Fatalf("opening bolt repository: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func newTestComplaint(name string) *models.Complaint {
	return &models.Complaint{
		Name:    name,
		Age:     40,
		Problem: "pothole on main road",
	}
}
