package render

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ledongthuc/pdf"
)

var errNotPDF = errors.New("missing %PDF header")

// PageCount parses data as a PDF and returns its number of pages.
func PageCount(data []byte) (n int, err error) {
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return 0, errNotPDF
	}
	defer func() {
		if rec := recover(); rec != nil {
			n, err = 0, fmt.Errorf("parse pdf: %v", rec)
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("parse pdf: %w", err)
	}
	return r.NumPage(), nil
}
