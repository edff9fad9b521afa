package resumes

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo stores resumes in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Resume
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Resume)}
}

func (r *MemoryRepo) Create(ctx context.Context, resume Resume) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[resume.ID] = cloneResume(resume)
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, userID, resumeID string) (Resume, error) {
	if err := ctx.Err(); err != nil {
		return Resume{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	resume, ok := r.byID[resumeID]
	if !ok || resume.UserID != userID {
		return Resume{}, ErrNotFound
	}
	return cloneResume(resume), nil
}

// ListByUser returns a user's resumes, most recently updated first.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Resume, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}

	r.mu.RLock()
	var out []Resume
	for _, resume := range r.byID {
		if resume.UserID == userID {
			out = append(out, cloneResume(resume))
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	if offset >= len(out) {
		return []Resume{}, nil
	}
	end := len(out)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return out[offset:end], nil
}

func (r *MemoryRepo) UpdateContent(ctx context.Context, userID, resumeID string, content Content, at time.Time) error {
	return r.update(ctx, userID, resumeID, func(resume *Resume) {
		resume.Content = content
		resume.UpdatedAt = at
	})
}

func (r *MemoryRepo) UpdateTemplateConfig(ctx context.Context, userID, resumeID string, cfg TemplateConfig, at time.Time) error {
	return r.update(ctx, userID, resumeID, func(resume *Resume) {
		resume.TemplateConfig = &cfg
		resume.UpdatedAt = at
	})
}

func (r *MemoryRepo) SetPDFURL(ctx context.Context, userID, resumeID, pdfURL string, at time.Time) error {
	return r.update(ctx, userID, resumeID, func(resume *Resume) {
		resume.PDFURL = pdfURL
		resume.UpdatedAt = at
	})
}

func (r *MemoryRepo) Delete(ctx context.Context, userID, resumeID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	resume, ok := r.byID[resumeID]
	if !ok || resume.UserID != userID {
		return ErrNotFound
	}
	delete(r.byID, resumeID)
	return nil
}

func (r *MemoryRepo) update(ctx context.Context, userID, resumeID string, apply func(*Resume)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	resume, ok := r.byID[resumeID]
	if !ok || resume.UserID != userID {
		return ErrNotFound
	}
	apply(&resume)
	r.byID[resumeID] = cloneResume(resume)
	return nil
}

// cloneResume copies the pointer and slice fields so callers never share
// state with the store.
func cloneResume(in Resume) Resume {
	out := in
	if in.TemplateConfig != nil {
		cfg := *in.TemplateConfig
		out.TemplateConfig = &cfg
	}
	out.Content.Experience = append([]Experience(nil), in.Content.Experience...)
	out.Content.Education = append([]Education(nil), in.Content.Education...)
	out.Content.Skills = append([]Skill(nil), in.Content.Skills...)
	out.Content.Languages = append([]string(nil), in.Content.Languages...)
	out.Content = out.Content.normalize()
	return out
}

var _ Repo = (*MemoryRepo)(nil)
