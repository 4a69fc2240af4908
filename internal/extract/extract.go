// Package extract turns uploaded documents into plain text. Binary formats
// such as PDF or DOCX are handled by external extractors registered in a
// Registry; this package ships the plain text one.
package extract

import (
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrCorruptDocument   = errors.New("corrupt document")
)

const (
	MIMEPlain    = "text/plain"
	MIMEMarkdown = "text/markdown"
	mimeOctet    = "application/octet-stream"
)

type Extractor interface {
	// Extract returns the document text. It fails with ErrUnsupportedFormat or
	// ErrCorruptDocument.
	Extract(data []byte, mimeType string) (string, error)
	// Formats lists the MIME types the extractor accepts.
	Formats() []string
}

// Registry dispatches documents to extractors by MIME type.
type Registry struct {
	byType map[string]Extractor
}

// NewRegistry registers extractors in order; a later extractor wins on a shared type.
func NewRegistry(extractors ...Extractor) *Registry {
	r := &Registry{byType: make(map[string]Extractor)}
	for _, e := range extractors {
		for _, f := range e.Formats() {
			r.byType[MediaType(f)] = e
		}
	}
	return r
}

func (r *Registry) Formats() []string {
	out := make([]string, 0, len(r.byType))
	for f := range r.byType {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

func (r *Registry) Extract(data []byte, mimeType string) (string, error) {
	mt := Detect(data, mimeType)
	e, ok := r.byType[mt]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, mt)
	}
	return e.Extract(data, mt)
}

// MediaType strips parameters and lowercases a MIME type.
func MediaType(mimeType string) string {
	mimeType = strings.TrimSpace(mimeType)
	if mt, _, err := mime.ParseMediaType(mimeType); err == nil {
		return mt
	}
	return strings.ToLower(mimeType)
}

// Detect returns the declared media type, or sniffs the content when nothing
// useful was declared. Any text-like content sniffs as text/plain.
func Detect(data []byte, declared string) string {
	if mt := MediaType(declared); mt != "" && mt != mimeOctet {
		return mt
	}

	detected := mimetype.Detect(data)
	for m := detected; m != nil; m = m.Parent() {
		if m.Is(MIMEPlain) {
			return MIMEPlain
		}
	}
	return MediaType(detected.String())
}

var extensionTypes = map[string]string{
	".txt":      MIMEPlain,
	".text":     MIMEPlain,
	".md":       MIMEMarkdown,
	".markdown": MIMEMarkdown,
	".pdf":      "application/pdf",
	".docx":     "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// TypeByFilename guesses a MIME type from the file extension. Unknown
// extensions return an empty string so the content gets sniffed.
func TypeByFilename(name string) string {
	return extensionTypes[strings.ToLower(filepath.Ext(name))]
}
