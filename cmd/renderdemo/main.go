package main

// Render an HTML file, or the built-in resume template, to a local PDF:
//   go run ./cmd/renderdemo --in page.html --out ./out/page.pdf
//   go run ./cmd/renderdemo --sample --layout classic --color "#0ea5e9"

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	flag "github.com/spf13/pflag"

	"resume-renderer/internal/bootstrap"
	"resume-renderer/internal/render"
	"resume-renderer/internal/resumes"
	"resume-renderer/internal/shared/config"
)

type demoFlags struct {
	in       string
	out      string
	sample   bool
	layout   string
	color    string
	provider string
	timeout  time.Duration
}

func parseFlags(args []string) (demoFlags, error) {
	var f demoFlags
	fs := flag.NewFlagSet("renderdemo", flag.ContinueOnError)
	fs.StringVarP(&f.in, "in", "i", "", "HTML file to render")
	fs.StringVarP(&f.out, "out", "o", "./out/render.pdf", "output path for the PDF")
	fs.BoolVar(&f.sample, "sample", false, "render the resume template with sample content")
	fs.StringVar(&f.layout, "layout", "", "template layout for --sample")
	fs.StringVar(&f.color, "color", "", "primary color for --sample")
	fs.StringVar(&f.provider, "provider", "", "browser provider: local or packaged (default from env)")
	fs.DurationVar(&f.timeout, "timeout", 0, "render deadline (default RENDER_MAX_DURATION)")
	if err := fs.Parse(args[1:]); err != nil {
		return f, err
	}
	if f.in == "" && !f.sample {
		return f, fmt.Errorf("either --in or --sample is required")
	}
	return f, nil
}

func main() {
	flags, err := parseFlags(os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := run(flags); err != nil {
		fmt.Fprintf(os.Stderr, "render failed: %v\n", err)
		os.Exit(1)
	}
}

func run(flags demoFlags) error {
	cfg := config.Load()
	if flags.provider != "" {
		cfg.BrowserProvider = flags.provider
	}
	timeout := cfg.RenderMaxDuration
	if flags.timeout > 0 {
		timeout = flags.timeout
	}

	html, err := loadHTML(flags)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	start := time.Now()
	h, err := bootstrap.BuildProvider(cfg).Acquire(ctx)
	if err != nil {
		return err
	}
	pdf, err := render.New().Render(ctx, h, html)
	h.Release()
	if err != nil {
		return err
	}

	pages, err := render.PageCount(pdf)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(flags.out), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(flags.out, pdf, 0o644); err != nil {
		return err
	}

	fmt.Printf("OK: wrote %s (%d pages, %d bytes, %s)\n", flags.out, pages, len(pdf), time.Since(start).Round(time.Millisecond))
	return nil
}

func loadHTML(flags demoFlags) (string, error) {
	if !flags.sample {
		data, err := os.ReadFile(flags.in)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	tc := resumes.DefaultTemplateConfig()
	if flags.layout != "" {
		tc.Layout = flags.layout
	}
	if flags.color != "" {
		tc.PrimaryColor = flags.color
	}
	return resumes.RenderHTML(sampleContent(), tc, resumes.DefaultTemplateConfig())
}

func sampleContent() resumes.Content {
	c := resumes.InitialContent()
	c.PersonalInfo.FullName = "Maria Souza"
	c.PersonalInfo.Headline = "Engenheira de Software"
	c.PersonalInfo.Email = "maria@example.com"
	c.PersonalInfo.Location = "São Paulo, SP"
	c.PersonalInfo.Summary = "Desenvolvedora backend com foco em sistemas distribuídos."
	c.Experience = []resumes.Experience{{
		ID:          "exp-1",
		Company:     "Acme",
		Position:    "Engenheira Sênior",
		StartDate:   "2021-03",
		Current:     true,
		Description: "Serviços de geração de documentos.",
	}}
	c.Skills = []resumes.Skill{{ID: "s-1", Name: "Go", Level: resumes.LevelAdvanced}}
	c.Languages = []string{"Português", "Inglês"}
	return c
}
