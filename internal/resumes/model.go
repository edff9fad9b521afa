package resumes

import "time"

// Resume is a user's stored resume.
type Resume struct {
	ID             string
	UserID         string
	Title          string
	Content        Content
	TemplateConfig *TemplateConfig
	PDFURL         string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Content is the structured body of a resume.
type Content struct {
	PersonalInfo PersonalInfo `json:"personalInfo"`
	Experience   []Experience `json:"experience"`
	Education    []Education  `json:"education"`
	Skills       []Skill      `json:"skills"`
	Languages    []string     `json:"languages"`
}

type PersonalInfo struct {
	FullName     string `json:"fullName"`
	Headline     string `json:"headline"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	LinkedinURL  string `json:"linkedinUrl,omitempty"`
	GithubURL    string `json:"githubUrl,omitempty"`
	PortfolioURL string `json:"portfolioUrl,omitempty"`
	Location     string `json:"location"`
	Summary      string `json:"summary,omitempty"`
	PhotoURL     string `json:"photoUrl,omitempty"`
}

type Experience struct {
	ID          string `json:"id"`
	Company     string `json:"company"`
	Position    string `json:"position"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate,omitempty"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

type Education struct {
	ID          string `json:"id"`
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate,omitempty"`
}

// Skill levels.
const (
	LevelBeginner     = "Beginner"
	LevelIntermediate = "Intermediate"
	LevelAdvanced     = "Advanced"
	LevelExpert       = "Expert"
)

type Skill struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Level string `json:"level"`
}

// TemplateConfig selects the visual options of the built-in template.
type TemplateConfig struct {
	Layout        string `json:"layout"`
	FontFamily    string `json:"fontFamily"`
	PhotoPosition string `json:"photoPosition"`
	PrimaryColor  string `json:"primaryColor"`
	Texture       string `json:"texture"`
}

// DefaultTemplateConfig returns the configuration used for resumes that
// never chose one. Each call returns a fresh value.
func DefaultTemplateConfig() TemplateConfig {
	return TemplateConfig{
		Layout:        "modern",
		FontFamily:    "Inter",
		PhotoPosition: "left",
		PrimaryColor:  "#4f46e5",
		Texture:       "none",
	}
}

// InitialContent is the empty content a new resume starts with.
func InitialContent() Content {
	return Content{
		Experience: []Experience{},
		Education:  []Education{},
		Skills:     []Skill{},
		Languages:  []string{},
	}
}

// normalize replaces nil slices so stored JSON always carries arrays.
func (c Content) normalize() Content {
	if c.Experience == nil {
		c.Experience = []Experience{}
	}
	if c.Education == nil {
		c.Education = []Education{}
	}
	if c.Skills == nil {
		c.Skills = []Skill{}
	}
	if c.Languages == nil {
		c.Languages = []string{}
	}
	return c
}
