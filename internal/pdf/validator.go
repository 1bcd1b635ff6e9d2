package pdf

import (
	"bytes"
	"fmt"
	"mime"
	"os"
	"strings"
)

// the header may be preceded by junk within the first kilobyte
const headerSearchLimit = 1024

var pdfHeader = []byte("%PDF-")

// Validator checks that files and uploads are PDFs within the size limit
type Validator struct {
	maxFileSize int64
}

// NewValidator creates a new PDF validator with the specified constraints
func NewValidator(maxFileSize int64) *Validator {
	return &Validator{
		maxFileSize: maxFileSize,
	}
}

// MaxFileSize returns the configured size limit in bytes
func (v *Validator) MaxFileSize() int64 {
	return v.maxFileSize
}

// ValidateUpload checks an uploaded body and its declared content type.
// A declared type other than PDF or a generic binary type is rejected, and the
// content itself must carry a PDF header.
func (v *Validator) ValidateUpload(contentType string, data []byte) error {
	if contentType != "" {
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err != nil {
			return fmt.Errorf("%w: unparseable content type %q", ErrNotPDF, contentType)
		}
		if mediaType != "application/pdf" && mediaType != "application/octet-stream" {
			return fmt.Errorf("%w: content type %s", ErrNotPDF, mediaType)
		}
	}

	if len(data) == 0 {
		return ErrEmptyFile
	}
	if int64(len(data)) > v.maxFileSize {
		return fmt.Errorf("%w: %d bytes (max: %d bytes)", ErrFileTooLarge, len(data), v.maxFileSize)
	}
	if !HasPDFHeader(data) {
		return fmt.Errorf("%w: missing PDF header", ErrNotPDF)
	}
	return nil
}

// ValidateFile performs basic validation on a PDF file path
func (v *Validator) ValidateFile(filePath string) error {
	if filePath == "" {
		return fmt.Errorf("path cannot be empty")
	}

	fileInfo, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("file does not exist: %s", filePath)
	}
	if err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}

	if fileInfo.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", filePath)
	}

	if !strings.HasSuffix(strings.ToLower(filePath), ".pdf") {
		return fmt.Errorf("%w: %s", ErrNotPDF, filePath)
	}

	if fileInfo.Size() == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyFile, filePath)
	}

	if fileInfo.Size() > v.maxFileSize {
		return fmt.Errorf("%w: %d bytes (max: %d bytes)",
			ErrFileTooLarge, fileInfo.Size(), v.maxFileSize)
	}

	return nil
}

// IsValidPDF performs a quick check to see if a file is a valid PDF
func (v *Validator) IsValidPDF(filePath string) bool {
	return v.ValidateFile(filePath) == nil
}

// HasPDFHeader reports whether data starts like a PDF file
func HasPDFHeader(data []byte) bool {
	head := data[:min(len(data), headerSearchLimit)]
	return bytes.Contains(head, pdfHeader)
}
