package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/victorivanov/complaintbox/internal/models"
	"github.com/victorivanov/complaintbox/internal/snowflake"
)

type complaintRepo struct {
	pool      *pgxpool.Pool
	snowflake *snowflake.Generator
}

// NewComplaintRepository returns a PostgreSQL-backed ComplaintRepository.
// The repository owns the pool and closes it on Close.
func NewComplaintRepository(pool *pgxpool.Pool, sf *snowflake.Generator) ComplaintRepository {
	return &complaintRepo{pool: pool, snowflake: sf}
}

func (r *complaintRepo) Create(ctx context.Context, c *models.Complaint) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("create complaint: %w: %w", ErrValidationRejected, err)
	}
	stamp(c, r.snowflake)

	var (
		data        []byte
		contentType *string
		size        *int64
	)
	if c.Photo != nil {
		data = c.Photo.Data
		contentType = &c.Photo.ContentType
		size = &c.Photo.Size
	}

	// A single INSERT is atomic: readers see the whole row or nothing.
	_, err := r.pool.Exec(ctx,
		`INSERT INTO complaints (id, name, age, problem, photo_data, photo_content_type, photo_size, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.Name, c.Age, c.Problem, data, contentType, size, c.CreatedAt,
	)
	return classifyPgError("create complaint", err)
}

func (r *complaintRepo) ListAll(ctx context.Context) ([]models.Complaint, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, age, problem, photo_data, photo_content_type, photo_size, created_at
		 FROM complaints
		 ORDER BY created_at DESC, id ASC`,
	)
	if err != nil {
		return nil, classifyPgError("list complaints", err)
	}
	defer rows.Close()

	complaints := []models.Complaint{}
	for rows.Next() {
		var (
			c           models.Complaint
			data        []byte
			contentType *string
			size        *int64
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.Age, &c.Problem, &data, &contentType, &size, &c.CreatedAt); err != nil {
			return nil, classifyPgError("scan complaint", err)
		}
		if contentType != nil {
			c.Photo = &models.Attachment{Data: data, ContentType: *contentType, Size: int64(len(data))}
			if size != nil {
				c.Photo.Size = *size
			}
		}
		complaints = append(complaints, c)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyPgError("list complaints", err)
	}
	return complaints, nil
}

func (r *complaintRepo) Ping(ctx context.Context) error {
	return classifyPgError("ping", r.pool.Ping(ctx))
}

func (r *complaintRepo) Close() error {
	r.pool.Close()
	return nil
}
