package resumes

import "time"

// ResumeResponse is the outward-facing representation of a resume.
type ResumeResponse struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Content        Content         `json:"content"`
	TemplateConfig *TemplateConfig `json:"templateConfig"`
	PDFURL         string          `json:"pdfUrl,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// ResumeSummary is a list entry.
type ResumeSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	PDFURL    string    `json:"pdfUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type createRequest struct {
	Title string `json:"title"`
}

type generateResponse struct {
	Success     bool   `json:"success"`
	PDFURL      string `json:"pdfUrl"`
	DownloadURL string `json:"downloadUrl,omitempty"`
}

func toResponse(r Resume) ResumeResponse {
	return ResumeResponse{
		ID:             r.ID,
		Title:          r.Title,
		Content:        r.Content.normalize(),
		TemplateConfig: r.TemplateConfig,
		PDFURL:         r.PDFURL,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func toSummary(r Resume) ResumeSummary {
	return ResumeSummary{
		ID:        r.ID,
		Title:     r.Title,
		PDFURL:    r.PDFURL,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
