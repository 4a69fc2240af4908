package extract

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"
)

var bom = []byte{0xEF, 0xBB, 0xBF}

// PlainText reads UTF-8 text and markdown documents.
type PlainText struct{}

func (PlainText) Formats() []string {
	return []string{MIMEPlain, MIMEMarkdown}
}

func (PlainText) Extract(data []byte, mimeType string) (string, error) {
	switch mt := MediaType(mimeType); mt {
	case MIMEPlain, MIMEMarkdown:
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, mt)
	}

	data = bytes.TrimPrefix(data, bom)
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: text is not valid UTF-8", ErrCorruptDocument)
	}
	if bytes.IndexByte(data, 0) >= 0 {
		return "", fmt.Errorf("%w: text contains NUL bytes", ErrCorruptDocument)
	}

	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n"), nil
}
