package shred

import (
	"path/filepath"
	"strings"
)

// Format is the container format declared by the caller. The pipeline never
// sniffs content to guess it.
type Format string

const (
	FormatEPUB Format = "epub"
	FormatPDF  Format = "pdf"
)

// shredder turns one container format into admitted chapters.
type shredder interface {
	Name() string
	Shred(data []byte) ([]Chapter, error)
}

// formats lists the known formats in display order.
var formats = []struct {
	format     Format
	name       string
	extensions []string
}{
	{FormatEPUB, "EPUB", []string{".epub"}},
	{FormatPDF, "PDF", []string{".pdf"}},
}

// ParseFormat converts a format tag such as "epub" or "PDF" to a Format.
func ParseFormat(s string) (Format, error) {
	tag := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, f := range formats {
		if f.format == tag {
			return tag, nil
		}
	}
	return "", &Error{Kind: KindUnsupportedFormat, Message: "unsupported format " + strings.TrimSpace(s)}
}

// FormatFromFilename picks the format from the file extension.
func FormatFromFilename(filename string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, f := range formats {
		for _, e := range f.extensions {
			if ext == e {
				return f.format, nil
			}
		}
	}
	return "", &Error{
		Kind:    KindUnsupportedFormat,
		Message: "unsupported file type " + filepath.Base(filename) + "; use EPUB or PDF",
	}
}

// SupportedFormats returns format names with their extensions.
func SupportedFormats() []string {
	var out []string
	for _, f := range formats {
		out = append(out, f.name+" ("+strings.Join(f.extensions, ", ")+")")
	}
	return out
}
