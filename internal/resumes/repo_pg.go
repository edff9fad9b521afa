package resumes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const resumeColumns = `id, user_id, title, content, template_config, pdf_url, created_at, updated_at`

// Create inserts a resume.
func (r *PGRepo) Create(ctx context.Context, resume Resume) error {
	content, err := json.Marshal(resume.Content.normalize())
	if err != nil {
		return fmt.Errorf("encode content: %w", err)
	}
	cfg, err := encodeTemplateConfig(resume.TemplateConfig)
	if err != nil {
		return err
	}
	const query = `
INSERT INTO resumes (` + resumeColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = r.DB.ExecContext(ctx, query,
		resume.ID,
		resume.UserID,
		resume.Title,
		string(content),
		cfg,
		nullString(resume.PDFURL),
		resume.CreatedAt,
		resume.UpdatedAt,
	)
	return err
}

// GetByID returns a resume owned by userID.
func (r *PGRepo) GetByID(ctx context.Context, userID, resumeID string) (Resume, error) {
	const query = `
SELECT ` + resumeColumns + `
FROM resumes
WHERE id = $1 AND user_id = $2
LIMIT 1`
	resume, err := scanResume(r.DB.QueryRowContext(ctx, query, resumeID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Resume{}, ErrNotFound
		}
		return Resume{}, err
	}
	return resume, nil
}

// ListByUser lists a user's resumes, most recently updated first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Resume, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT ` + resumeColumns + `
FROM resumes
WHERE user_id = $1
ORDER BY updated_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Resume{}
	for rows.Next() {
		resume, err := scanResume(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, resume)
	}
	return out, rows.Err()
}

func (r *PGRepo) UpdateContent(ctx context.Context, userID, resumeID string, content Content, at time.Time) error {
	raw, err := json.Marshal(content.normalize())
	if err != nil {
		return fmt.Errorf("encode content: %w", err)
	}
	const query = `
UPDATE resumes SET content = $1, updated_at = $2
WHERE id = $3 AND user_id = $4`
	return r.execOne(ctx, query, string(raw), at, resumeID, userID)
}

func (r *PGRepo) UpdateTemplateConfig(ctx context.Context, userID, resumeID string, cfg TemplateConfig, at time.Time) error {
	raw, err := encodeTemplateConfig(&cfg)
	if err != nil {
		return err
	}
	const query = `
UPDATE resumes SET template_config = $1, updated_at = $2
WHERE id = $3 AND user_id = $4`
	return r.execOne(ctx, query, raw, at, resumeID, userID)
}

func (r *PGRepo) SetPDFURL(ctx context.Context, userID, resumeID, pdfURL string, at time.Time) error {
	const query = `
UPDATE resumes SET pdf_url = $1, updated_at = $2
WHERE id = $3 AND user_id = $4`
	return r.execOne(ctx, query, pdfURL, at, resumeID, userID)
}

func (r *PGRepo) Delete(ctx context.Context, userID, resumeID string) error {
	const query = `DELETE FROM resumes WHERE id = $1 AND user_id = $2`
	return r.execOne(ctx, query, resumeID, userID)
}

// execOne runs a single-row write and maps "no rows touched" to ErrNotFound.
func (r *PGRepo) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResume(row rowScanner) (Resume, error) {
	var (
		resume  Resume
		content []byte
		cfg     []byte
		pdfURL  sql.NullString
	)
	if err := row.Scan(
		&resume.ID,
		&resume.UserID,
		&resume.Title,
		&content,
		&cfg,
		&pdfURL,
		&resume.CreatedAt,
		&resume.UpdatedAt,
	); err != nil {
		return Resume{}, err
	}
	if len(content) > 0 {
		if err := json.Unmarshal(content, &resume.Content); err != nil {
			return Resume{}, fmt.Errorf("decode content: %w", err)
		}
	}
	resume.Content = resume.Content.normalize()
	if len(cfg) > 0 && string(cfg) != "null" {
		var tc TemplateConfig
		if err := json.Unmarshal(cfg, &tc); err != nil {
			return Resume{}, fmt.Errorf("decode template config: %w", err)
		}
		resume.TemplateConfig = &tc
	}
	resume.PDFURL = pdfURL.String
	return resume, nil
}

func encodeTemplateConfig(cfg *TemplateConfig) (any, error) {
	if cfg == nil {
		return nil, nil
	}
	raw, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode template config: %w", err)
	}
	return string(raw), nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

var _ Repo = (*PGRepo)(nil)
