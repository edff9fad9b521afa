package resumes

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

const maxTitleLen = 200

// Service contains business logic for resumes.
type Service struct {
	Repo Repo
	Now  func() time.Time
}

// Create starts a new resume for userID with empty content.
func (s *Service) Create(ctx context.Context, userID, title string) (Resume, error) {
	title = strings.TrimSpace(title)
	if userID == "" || title == "" || len(title) > maxTitleLen {
		return Resume{}, ErrInvalidInput
	}
	now := s.now()
	resume := Resume{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		Content:   InitialContent(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Repo.Create(ctx, resume); err != nil {
		return Resume{}, err
	}
	return resume, nil
}

func (s *Service) Get(ctx context.Context, userID, resumeID string) (Resume, error) {
	if err := checkIDs(userID, resumeID); err != nil {
		return Resume{}, err
	}
	return s.Repo.GetByID(ctx, userID, resumeID)
}

// List returns a user's resumes, most recently updated first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Resume, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// UpdateContent replaces the content of an owned resume after schema
// validation.
func (s *Service) UpdateContent(ctx context.Context, userID, resumeID string, content Content) (Resume, error) {
	if err := checkIDs(userID, resumeID); err != nil {
		return Resume{}, err
	}
	if err := ValidateContent(content); err != nil {
		return Resume{}, err
	}
	if err := s.Repo.UpdateContent(ctx, userID, resumeID, content.normalize(), s.now()); err != nil {
		return Resume{}, err
	}
	return s.Repo.GetByID(ctx, userID, resumeID)
}

// UpdateTemplateConfig stores the visual options of an owned resume.
func (s *Service) UpdateTemplateConfig(ctx context.Context, userID, resumeID string, cfg TemplateConfig) (Resume, error) {
	if err := checkIDs(userID, resumeID); err != nil {
		return Resume{}, err
	}
	if err := ValidateTemplateConfig(cfg); err != nil {
		return Resume{}, err
	}
	if err := s.Repo.UpdateTemplateConfig(ctx, userID, resumeID, cfg, s.now()); err != nil {
		return Resume{}, err
	}
	return s.Repo.GetByID(ctx, userID, resumeID)
}

func (s *Service) Delete(ctx context.Context, userID, resumeID string) error {
	if err := checkIDs(userID, resumeID); err != nil {
		return err
	}
	return s.Repo.Delete(ctx, userID, resumeID)
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// checkIDs rejects empty identities and ids that are not UUIDs. A malformed
// id can never match a row, so it reports ErrNotFound.
func checkIDs(userID, resumeID string) error {
	if userID == "" || resumeID == "" {
		return ErrInvalidInput
	}
	if _, err := uuid.Parse(resumeID); err != nil {
		return ErrNotFound
	}
	return nil
}
