package extract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

const (
	MIMEText = "text/plain"
	MIMEPDF  = "application/pdf"
	MIMEDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	DefaultMaxSize int64 = 5 << 20
)

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrEmptyFile       = errors.New("file is empty")
	ErrTooLarge        = errors.New("file is too large")
)

// Document is an uploaded resume with its extracted text.
type Document struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Size int64  `json:"size"`
	Text string `json:"text"`
}

// SizeKB returns the size in kilobytes, formatted with two decimals.
func (d *Document) SizeKB() string {
	return fmt.Sprintf("%.2f KB", float64(d.Size)/1024)
}

// DisplayType returns the MIME type or N/A when it is unknown.
func (d *Document) DisplayType() string {
	if strings.TrimSpace(d.Type) == "" {
		return "N/A"
	}
	return d.Type
}

// Extractor turns resume files into plain text.
type Extractor struct {
	maxSize int64
}

func New(maxSize int64) *Extractor {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Extractor{maxSize: maxSize}
}

func (e *Extractor) MaxSize() int64 {
	return e.maxSize
}

// FromFile reads and extracts the file at path.
func (e *Extractor) FromFile(path string) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if info.Size() > e.maxSize {
		return nil, fmt.Errorf("%w: %d bytes, limit is %d", ErrTooLarge, info.Size(), e.maxSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return e.FromBytes(filepath.Base(path), data)
}

// FromReader extracts at most the configured limit of bytes from r.
func (e *Extractor) FromReader(name string, r io.Reader) (*Document, error) {
	data, err := io.ReadAll(io.LimitReader(r, e.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	return e.FromBytes(name, data)
}

// FromBytes detects the file type and extracts its text.
func (e *Extractor) FromBytes(name string, data []byte) (*Document, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	if int64(len(data)) > e.maxSize {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, e.maxSize)
	}

	mime := DetectType(name, data)

	text, err := extractText(mime, data)
	if err != nil {
		return nil, err
	}

	return &Document{
		Name: name,
		Type: mime,
		Size: int64(len(data)),
		Text: strings.TrimSpace(text),
	}, nil
}

// DetectType sniffs the content and falls back to the file extension for
// formats that sniff as generic containers.
func DetectType(name string, data []byte) string {
	detected := mimetype.Detect(data)

	switch {
	case detected.Is(MIMEDOCX), detected.Is(MIMEPDF):
		return detected.String()
	case detected.Is("application/zip"):
		if strings.EqualFold(filepath.Ext(name), ".docx") {
			return MIMEDOCX
		}
	case strings.HasPrefix(detected.String(), "text/"):
		return MIMEText
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".md", ".text":
		if utf8.Valid(data) {
			return MIMEText
		}
	case ".pdf":
		return MIMEPDF
	case ".docx":
		return MIMEDOCX
	}

	return detected.String()
}

func extractText(mime string, data []byte) (string, error) {
	switch mime {
	case MIMEText:
		return string(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))), nil
	case MIMEPDF:
		return extractPDFText(data)
	case MIMEDOCX:
		return extractDocxText(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, mime)
	}
}

func extractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}

	var builder strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("read pdf page %d: %w", i, err)
		}

		if builder.Len() > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString(text)
	}

	return builder.String(), nil
}

var (
	paragraphEnd = regexp.MustCompile(`</w:p>`)
	xmlTag       = regexp.MustCompile(`<[^>]+>`)
)

func extractDocxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("parse docx: %w", err)
	}
	defer doc.Close()

	content := doc.Editable().GetContent()
	content = paragraphEnd.ReplaceAllString(content, "\n")
	content = xmlTag.ReplaceAllString(content, "")

	return unescapeXML(content), nil
}

var xmlEntities = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
	"&amp;", "&",
)

func unescapeXML(s string) string {
	return xmlEntities.Replace(s)
}
