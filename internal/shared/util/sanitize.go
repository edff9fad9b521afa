package util

import (
	"errors"
	"path"
	"strings"
	"unicode"
)

var ErrInvalidFileName = errors.New("invalid file name")

const maxFileNameLen = 120

// SanitizeFileName reduces name to a single safe path segment. Traversal
// patterns are rejected; separators and control characters become '_'.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", ErrInvalidFileName
	}
	s := strings.TrimSpace(name)
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\':
			return '_'
		case unicode.IsControl(r):
			return -1
		case r == '"' || r == '?' || r == '#' || r == '%':
			return '_'
		}
		return r
	}, s)
	if len(s) > maxFileNameLen {
		ext := path.Ext(s)
		if len(ext) > 10 {
			ext = ""
		}
		s = truncateUTF8(s, maxFileNameLen-len(ext)) + ext
	}
	if s == "" || s == "." {
		return "", ErrInvalidFileName
	}
	return s, nil
}

// EnsureExt appends ext to name unless it already ends with it
// (case-insensitively).
func EnsureExt(name, ext string) string {
	if strings.HasSuffix(strings.ToLower(name), strings.ToLower(ext)) {
		return name
	}
	return name + ext
}

func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
