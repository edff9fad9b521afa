package resumes

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema/*.schema.json
var schemaFS embed.FS

var (
	contentSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
		return loadSchema("schema/content.schema.json")
	})
	templateConfigSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
		return loadSchema("schema/template_config.schema.json")
	})
)

func loadSchema(name string) (*gojsonschema.Schema, error) {
	raw, err := schemaFS.ReadFile(name)
	if err != nil {
		return nil, err
	}
	return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
}

// ValidateContent checks content against the embedded resume schema.
func ValidateContent(content Content) error {
	return validate(contentSchema, content.normalize())
}

// ValidateTemplateConfig checks cfg against the allowed template options.
func ValidateTemplateConfig(cfg TemplateConfig) error {
	return validate(templateConfigSchema, cfg)
}

func validate(schema func() (*gojsonschema.Schema, error), doc any) error {
	s, err := schema()
	if err != nil {
		return fmt.Errorf("load schema: %w", err)
	}
	res, err := s.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(msgs, "; "))
}
