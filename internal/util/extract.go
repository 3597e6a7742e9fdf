package util

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"image"
	"image/png"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

const (
	MimePDF  = "application/pdf"
	MimeText = "text/plain"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrNoTextExtracted     = errors.New("no text extracted")
)

// DetectKind resolves the document kind from the declared content type, falling back to
// the file extension when the client sent something generic.
func DetectKind(contentType, filename string) string {
	ct := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	switch ct {
	case MimePDF, MimeText, MimeDOCX:
		return ct
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return MimePDF
	case ".txt":
		return MimeText
	case ".docx":
		return MimeDOCX
	}
	return ct
}

// TextExtractor turns uploaded documents into plain text. With OCRFallback set, PDFs
// without a text layer are rendered and run through tesseract.
type TextExtractor struct {
	OCRFallback bool

	ocr func(data []byte) (string, error)
}

// Text extracts a job description of any supported kind.
func (e TextExtractor) Text(contentType, filename string, data []byte) (string, error) {
	switch kind := DetectKind(contentType, filename); kind {
	case MimeText:
		text := strings.ToValidUTF8(string(data), "")
		if strings.TrimSpace(text) == "" {
			return "", ErrNoTextExtracted
		}
		return text, nil
	case MimePDF:
		return e.PDF(data)
	case MimeDOCX:
		return ExtractDOCXText(data)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFileType, kind)
	}
}

// IsPDF reports whether data carries a PDF header near its start.
func IsPDF(data []byte) bool {
	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}
	return bytes.Contains(head, []byte("%PDF-"))
}

// PDF reads the text layer with MuPDF and falls back to a pure-Go reader when MuPDF
// cannot open the file.
func (e TextExtractor) PDF(data []byte) (string, error) {
	if !IsPDF(data) {
		return "", fmt.Errorf("%w: expected a PDF", ErrUnsupportedFileType)
	}

	text, err := extractWithFitz(data)
	if err != nil {
		log.Printf("fitz extraction failed, falling back to pdf reader: %v", err)
		text, err = extractWithPDFReader(data)
		if err != nil {
			return "", fmt.Errorf("failed to read PDF: %w", err)
		}
	}
	return e.withOCRFallback(text, data)
}

func (e TextExtractor) withOCRFallback(text string, data []byte) (string, error) {
	if strings.TrimSpace(text) == "" && e.OCRFallback {
		log.Println("PDF has no text layer, running OCR")
		ocr := e.ocr
		if ocr == nil {
			ocr = ExtractPDFOCR
		}
		var err error
		text, err = ocr(data)
		if err != nil {
			return "", err
		}
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrNoTextExtracted
	}
	return text, nil
}

func extractWithFitz(data []byte) (string, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	var sb strings.Builder
	for n := 0; n < doc.NumPage(); n++ {
		pageText, err := doc.Text(n)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", n+1, err)
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func extractWithPDFReader(data []byte) (text string, err error) {
	// the reader panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

var (
	docxParagraphEnd = regexp.MustCompile(`</w:p>`)
	xmlTag           = regexp.MustCompile(`<[^>]+>`)
)

// ExtractDOCXText flattens the document body XML into one line per paragraph.
func ExtractDOCXText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	content := docxParagraphEnd.ReplaceAllString(doc.Editable().GetContent(), "\n")
	text := html.UnescapeString(xmlTag.ReplaceAllString(content, ""))
	if strings.TrimSpace(text) == "" {
		return "", ErrNoTextExtracted
	}
	return text, nil
}

// ExtractPDFOCR renders every page and runs it through tesseract.
func ExtractPDFOCR(data []byte) (string, error) {
	if err := checkTesseract(); err != nil {
		return "", fmt.Errorf("tesseract check failed: %w", err)
	}

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	var fullText bytes.Buffer
	var lastErr error

	for n := 0; n < doc.NumPage(); n++ {
		img, err := doc.Image(n)
		if err != nil {
			lastErr = fmt.Errorf("page %d: failed to extract image: %w", n+1, err)
			log.Println(lastErr)
			continue
		}

		pageText, err := ocrImage(img)
		if err != nil {
			lastErr = fmt.Errorf("page %d: %w", n+1, err)
			log.Println(lastErr)
			continue
		}
		if pageText != "" {
			fullText.WriteString(pageText)
			fullText.WriteString("\n\n")
		}
	}

	result := strings.TrimSpace(fullText.String())
	if result == "" {
		if lastErr != nil {
			return "", fmt.Errorf("failed to extract text via OCR: %w", lastErr)
		}
		return "", ErrNoTextExtracted
	}
	return result, nil
}

func ocrImage(img image.Image) (string, error) {
	tmpFile, err := os.CreateTemp("", "page-*.png")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()
	defer os.Remove(tmpPath)

	if err := savePNG(tmpPath, img); err != nil {
		return "", err
	}

	out, err := exec.Command("tesseract", tmpPath, "stdout", "-l", "eng").CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("tesseract error: %w, output: %s", err, string(out))
	}
	return strings.TrimSpace(string(out)), nil
}

func checkTesseract() error {
	out, err := exec.Command("tesseract", "-v").CombinedOutput()
	if err != nil {
		return fmt.Errorf("tesseract not found or not executable: %w\nOutput: %s", err, string(out))
	}
	return nil
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return nil
}
