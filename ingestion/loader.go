package ingestion

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/poiesic/groundwork/core"
)

// Document is a source text ready to be chunked.
type Document struct {
	SourceId   string
	SourceType core.SourceType
	Domain     string
	Text       string
}

// LoadFile reads a .txt, .md or .pdf file into a Document whose SourceId is
// the cleaned path.
func LoadFile(path string, sourceType core.SourceType) (*Document, error) {
	var (
		text string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md", ".markdown", ".text":
		var data []byte
		data, err = os.ReadFile(path)
		text = string(data)
	case ".pdf":
		text, err = readPDF(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: no text in %s", ErrInvalidDocument, path)
	}

	return &Document{
		SourceId:   filepath.Clean(path),
		SourceType: sourceType,
		Text:       text,
	}, nil
}

func readPDF(path string) (string, error) {
	f, rdr, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	plain, err := rdr.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}
