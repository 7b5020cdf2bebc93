// Package pdftext extracts plain text from PDF documents so the offline
// extraction pipeline can read bank statements and receipts.
package pdftext

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/Veraticus/gastos/internal/common"
)

// MIMEType is the media type used when a PDF is sent to a model as a document.
const MIMEType = "application/pdf"

var pdfMagic = []byte("%PDF-")

// ErrNoText is returned when a PDF has no extractable text layer, which
// usually means it is a scanned image.
var ErrNoText = errors.New("pdf has no text layer")

// IsPDF reports whether data starts with the PDF signature.
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(bytes.TrimLeft(data, "\x00\t\r\n "), pdfMagic)
}

// Extract returns the text of every page in data, one line per text row.
// Horizontal gaps between text runs become runs of spaces so column
// layouts survive.
func Extract(ctx context.Context, data []byte) (text string, err error) {
	if !IsPDF(data) {
		return "", fmt.Errorf("%w: not a PDF document", common.ErrUnsupportedInput)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	// The reader panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to parse PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	pages := reader.NumPage()
	var buf strings.Builder
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		for _, line := range layoutPage(page.Content().Text) {
			buf.WriteString(line)
			buf.WriteByte('\n')
		}
	}

	text = strings.TrimSpace(buf.String())
	if text == "" {
		return "", ErrNoText
	}

	slog.Debug("extracted pdf text",
		"pages", pages,
		"chars", len(text))
	return text, nil
}
