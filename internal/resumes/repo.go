package resumes

import (
	"context"
	"time"
)

// Repo defines persistence operations for resumes. Every read and write is
// scoped to the owning user; a resume owned by someone else behaves as if it
// did not exist.
type Repo interface {
	Create(ctx context.Context, resume Resume) error
	GetByID(ctx context.Context, userID, resumeID string) (Resume, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Resume, error)
	UpdateContent(ctx context.Context, userID, resumeID string, content Content, at time.Time) error
	UpdateTemplateConfig(ctx context.Context, userID, resumeID string, cfg TemplateConfig, at time.Time) error
	// SetPDFURL records the latest rendered PDF and bumps updated_at in one
	// write.
	SetPDFURL(ctx context.Context, userID, resumeID, pdfURL string, at time.Time) error
	Delete(ctx context.Context, userID, resumeID string) error
}
