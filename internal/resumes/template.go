package resumes

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"regexp"
	"sync"
)

//go:embed templates/resume.html.tmpl
var templateFS embed.FS

var resumeTemplate = sync.OnceValues(func() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/resume.html.tmpl")
})

var hexColor = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

var fonts = map[string]struct {
	stack template.CSS
	url   template.URL
}{
	"Inter":      {"'Inter', sans-serif", "https://fonts.googleapis.com/css2?family=Inter:wght@400;500;600;700&display=swap"},
	"Lora":       {"'Lora', serif", "https://fonts.googleapis.com/css2?family=Lora:wght@400;500;600;700&display=swap"},
	"Roboto":     {"'Roboto', sans-serif", "https://fonts.googleapis.com/css2?family=Roboto:wght@400;500;700&display=swap"},
	"Montserrat": {"'Montserrat', sans-serif", "https://fonts.googleapis.com/css2?family=Montserrat:wght@400;500;600;700&display=swap"},
}

var textures = map[string]struct {
	image template.CSS
	size  template.CSS
}{
	"none":  {"none", "auto"},
	"dots":  {"radial-gradient(#cbd5e1 1px, transparent 1px)", "20px 20px"},
	"waves": {"radial-gradient(circle at 100% 50%, transparent 20%, rgba(0,0,0,0.03) 21%, rgba(0,0,0,0.03) 34%, transparent 35%), radial-gradient(circle at 0% 50%, transparent 20%, rgba(0,0,0,0.03) 21%, rgba(0,0,0,0.03) 34%, transparent 35%)", "20px 40px"},
	"lines": {"repeating-linear-gradient(45deg, rgba(0,0,0,0.01) 0px, rgba(0,0,0,0.01) 2px, transparent 2px, transparent 10px)", "auto"},
}

var layouts = map[string]bool{"modern": true, "classic": true, "minimalist": true}

var photoPositions = map[string]bool{"left": true, "right": true, "center": true}

type templateData struct {
	Info       PersonalInfo
	Experience []Experience
	Education  []Education
	Skills     []Skill
	Languages  []string

	Layout         string
	PhotoPosition  string
	FontStack      template.CSS
	FontURL        template.URL
	TextureImage   template.CSS
	TextureSize    template.CSS
	Primary        template.CSS
	PrimaryAlpha10 template.CSS
	PrimaryAlpha20 template.CSS
	PrimaryAlpha40 template.CSS
}

// RenderHTML lays out content with the built-in template. Unknown or
// missing options in cfg fall back to fallback field by field.
func RenderHTML(content Content, cfg TemplateConfig, fallback TemplateConfig) (string, error) {
	tmpl, err := resumeTemplate()
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}

	layout := pick(cfg.Layout, fallback.Layout, layouts)
	photo := pick(cfg.PhotoPosition, fallback.PhotoPosition, photoPositions)
	font, ok := fonts[cfg.FontFamily]
	if !ok {
		font = fonts[fallback.FontFamily]
	}
	texture, ok := textures[cfg.Texture]
	if !ok {
		texture = textures[fallback.Texture]
	}
	color := cfg.PrimaryColor
	if !hexColor.MatchString(color) {
		color = fallback.PrimaryColor
	}
	color = expandHex(color)

	data := templateData{
		Info:           content.PersonalInfo,
		Experience:     content.Experience,
		Education:      content.Education,
		Skills:         content.Skills,
		Languages:      content.Languages,
		Layout:         layout,
		PhotoPosition:  photo,
		FontStack:      font.stack,
		FontURL:        font.url,
		TextureImage:   texture.image,
		TextureSize:    texture.size,
		Primary:        template.CSS(color),
		PrimaryAlpha10: template.CSS(color + "10"),
		PrimaryAlpha20: template.CSS(color + "20"),
		PrimaryAlpha40: template.CSS(color + "40"),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}
	return buf.String(), nil
}

func pick(value, fallback string, allowed map[string]bool) string {
	if allowed[value] {
		return value
	}
	return fallback
}

// expandHex turns #abc into #aabbcc so an alpha suffix can be appended.
func expandHex(c string) string {
	if len(c) != 4 {
		return c
	}
	return string([]byte{'#', c[1], c[1], c[2], c[2], c[3], c[3]})
}
