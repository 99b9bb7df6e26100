package ingestion

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/turtacn/RegGap-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/RegGap-Intelligence/pkg/errors"
)

// Loader extracts text from one class of regulatory document file.
type Loader interface {
	// Load reads the file at path and returns a document attributed to the
	// given jurisdiction.
	Load(path, jurisdiction string, opts ...DocumentOption) (*RegulatoryDocument, error)

	// Supports reports whether this loader handles the given file path.
	Supports(path string) bool
}

// ─────────────────────────────────────────────────────────────────────────────
// TextLoader
// ─────────────────────────────────────────────────────────────────────────────

// TextLoader loads plain-text regulatory documents.
type TextLoader struct{}

func (TextLoader) Supports(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".txt")
}

func (TextLoader) Load(path, jurisdiction string, opts ...DocumentOption) (*RegulatoryDocument, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, wrapLoadError(err, path)
	}
	return NewRegulatoryDocument(string(content), path, jurisdiction, "txt", opts...)
}

// ─────────────────────────────────────────────────────────────────────────────
// HTMLLoader
// ─────────────────────────────────────────────────────────────────────────────

var (
	scriptRE = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleRE  = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	navRE    = regexp.MustCompile(`(?is)<(nav|footer|header)[^>]*>.*?</(nav|footer|header)>`)
	tagRE    = regexp.MustCompile(`<[^>]+>`)
	spacesRE = regexp.MustCompile(`\s+`)
)

// HTMLLoader loads HTML regulatory documents, stripping markup, scripts,
// styles, and chrome elements (nav/footer/header) to recover the body text.
type HTMLLoader struct{}

func (HTMLLoader) Supports(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".html") || strings.HasSuffix(lower, ".htm")
}

func (HTMLLoader) Load(path, jurisdiction string, opts ...DocumentOption) (*RegulatoryDocument, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, wrapLoadError(err, path)
	}
	return NewRegulatoryDocument(stripHTML(string(raw)), path, jurisdiction, "html", opts...)
}

func stripHTML(html string) string {
	clean := scriptRE.ReplaceAllString(html, "")
	clean = styleRE.ReplaceAllString(clean, "")
	clean = navRE.ReplaceAllString(clean, "")
	clean = tagRE.ReplaceAllString(clean, " ")
	clean = spacesRE.ReplaceAllString(clean, " ")
	return strings.TrimSpace(clean)
}

// ─────────────────────────────────────────────────────────────────────────────
// PDFLoader
// ─────────────────────────────────────────────────────────────────────────────

// PDFLoader loads PDF regulatory documents page by page.
type PDFLoader struct{}

func (PDFLoader) Supports(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".pdf")
}

func (PDFLoader) Load(path, jurisdiction string, opts ...DocumentOption) (*RegulatoryDocument, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, wrapLoadError(err, path)
		}
		return nil, errors.Wrap(err, errors.ErrCodeDocumentDecodingFailed, "failed to open PDF").
			WithDetail("path=" + path)
	}
	defer f.Close()

	var parts []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDocumentDecodingFailed,
				fmt.Sprintf("failed to extract text from page %d", i)).
				WithDetail("path=" + path)
		}
		if text != "" {
			parts = append(parts, text)
		}
	}

	return NewRegulatoryDocument(strings.Join(parts, "\n\n"), path, jurisdiction, "pdf", opts...)
}

// ─────────────────────────────────────────────────────────────────────────────
// DOCXLoader
// ─────────────────────────────────────────────────────────────────────────────

// DOCXLoader loads DOCX regulatory documents.  A .docx file is a zip archive;
// the body text lives in word/document.xml as runs of <w:t> elements grouped
// into <w:p> paragraphs.
type DOCXLoader struct{}

func (DOCXLoader) Supports(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".docx")
}

func (DOCXLoader) Load(path, jurisdiction string, opts ...DocumentOption) (*RegulatoryDocument, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, wrapLoadError(err, path)
	}

	archive, err := zip.OpenReader(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDocumentDecodingFailed, "failed to open DOCX archive").
			WithDetail("path=" + path)
	}
	defer archive.Close()

	for _, file := range archive.File {
		if file.Name != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDocumentDecodingFailed, "failed to read DOCX body").
				WithDetail("path=" + path)
		}
		content, err := extractDOCXText(rc)
		rc.Close()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDocumentDecodingFailed, "failed to parse DOCX body").
				WithDetail("path=" + path)
		}
		return NewRegulatoryDocument(content, path, jurisdiction, "docx", opts...)
	}

	return nil, errors.New(errors.ErrCodeDocumentDecodingFailed, "DOCX archive has no word/document.xml").
		WithDetail("path=" + path)
}

// extractDOCXText walks the document XML token stream collecting text runs,
// emitting a blank line between paragraphs.
func extractDOCXText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var (
		paragraphs []string
		current    strings.Builder
		inText     bool
	)
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if s := strings.TrimSpace(current.String()); s != "" {
					paragraphs = append(paragraphs, s)
				}
				current.Reset()
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		paragraphs = append(paragraphs, s)
	}

	return strings.Join(paragraphs, "\n\n"), nil
}

// ─────────────────────────────────────────────────────────────────────────────
// UniversalLoader
// ─────────────────────────────────────────────────────────────────────────────

// UniversalLoader dispatches to the first registered loader that supports the
// file extension.
type UniversalLoader struct {
	loaders []Loader
	logger  logging.Logger
}

// NewUniversalLoader constructs a UniversalLoader with all built-in loaders
// registered.  A nil logger is replaced with a no-op logger.
func NewUniversalLoader(logger logging.Logger) *UniversalLoader {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &UniversalLoader{
		loaders: []Loader{
			PDFLoader{},
			HTMLLoader{},
			DOCXLoader{},
			TextLoader{},
		},
		logger: logger.Named("ingestion"),
	}
}

// Load loads the document at path using the appropriate loader.
func (u *UniversalLoader) Load(path, jurisdiction string, opts ...DocumentOption) (*RegulatoryDocument, error) {
	for _, loader := range u.loaders {
		if loader.Supports(path) {
			return loader.Load(path, jurisdiction, opts...)
		}
	}
	return nil, errors.New(errors.ErrCodeDocumentFormatUnsupported, "unsupported file type").
		WithDetail("path=" + path)
}

// LoadDirectory recursively loads all supported documents under directory,
// attributing each to the given jurisdiction.  Files that fail to load are
// logged and skipped so one corrupt file does not abort a bulk import.
func (u *UniversalLoader) LoadDirectory(directory, jurisdiction string, opts ...DocumentOption) ([]*RegulatoryDocument, error) {
	var documents []*RegulatoryDocument

	err := filepath.WalkDir(directory, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		for _, loader := range u.loaders {
			if !loader.Supports(path) {
				continue
			}
			doc, loadErr := loader.Load(path, jurisdiction, opts...)
			if loadErr != nil {
				u.logger.Warn("failed to load document",
					logging.String("path", path),
					logging.Err(loadErr))
				break
			}
			documents = append(documents, doc)
			break
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDataSourceUnavailable, "failed to walk document directory").
			WithDetail("directory=" + directory)
	}

	return documents, nil
}

func wrapLoadError(err error, path string) *errors.AppError {
	if os.IsNotExist(err) {
		return errors.New(errors.ErrCodeDocumentNotFound, "document file not found").
			WithDetail("path=" + path)
	}
	return errors.Wrap(err, errors.ErrCodeDataSourceUnavailable, "failed to read document").
		WithDetail("path=" + path)
}
