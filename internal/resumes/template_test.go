package resumes

import (
	"strings"
	"testing"
)

func TestRenderHTMLSections(t *testing.T) {
	content := sampleContent()
	content.Education[0].EndDate = ""
	content.Experience = append(content.Experience, Experience{
		ID: "e2", Company: "Globex", Position: "Dev", StartDate: "2018", EndDate: "2020", Description: "APIs",
	})

	html, err := RenderHTML(content, DefaultTemplateConfig(), DefaultTemplateConfig())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{
		"<!DOCTYPE html>",
		"Ana Souza",
		"Sobre Mim",
		"Experiência Profissional",
		"Atual",
		"2018 — 2020",
		"Formação Acadêmica",
		"Presente",
		"Habilidades",
		"TypeScript",
		"Idiomas",
		"fonts.googleapis.com",
		"layout-modern",
		"photo-left",
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected %q in output", want)
		}
	}
}

func TestRenderHTMLOmitsEmptySections(t *testing.T) {
	html, err := RenderHTML(InitialContent(), DefaultTemplateConfig(), DefaultTemplateConfig())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(html, "Seu Nome") {
		t.Fatalf("expected placeholder name")
	}
	for _, section := range []string{"Sobre Mim", "Experiência Profissional", "Formação Acadêmica", "Habilidades"} {
		if strings.Contains(html, section) {
			t.Fatalf("empty section %q rendered", section)
		}
	}
}

func TestRenderHTMLEscapesContent(t *testing.T) {
	content := sampleContent()
	content.PersonalInfo.FullName = `<script>alert("x")</script>`

	html, err := RenderHTML(content, DefaultTemplateConfig(), DefaultTemplateConfig())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(html, "<script>") {
		t.Fatalf("user content must be escaped")
	}
}

func TestRenderHTMLFallsBackPerField(t *testing.T) {
	cfg := TemplateConfig{Layout: "classic", FontFamily: "Papyrus", PhotoPosition: "top", PrimaryColor: "red;}", Texture: "dots"}

	html, err := RenderHTML(sampleContent(), cfg, DefaultTemplateConfig())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"layout-classic", "photo-left", "'Inter'", "#4f46e5", "radial-gradient(#cbd5e1 1px"} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected %q in output", want)
		}
	}
	if strings.Contains(html, "red;}") {
		t.Fatalf("invalid color leaked into css")
	}
}

func TestExpandHex(t *testing.T) {
	if got := expandHex("#abc"); got != "#aabbcc" {
		t.Fatalf("unexpected %s", got)
	}
	if got := expandHex("#4f46e5"); got != "#4f46e5" {
		t.Fatalf("unexpected %s", got)
	}
}
