package validation

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/triggerNode/BuxTax/src/logger"
)

var ErrUnsupportedFileType = errors.New("unsupported file type")

// declaredCSVTypes are the Content-Type values browsers send for a .csv file. Spreadsheet
// workbooks are rejected explicitly: the parser only reads delimited text.
var declaredCSVTypes = map[string]bool{
	"":                         true,
	"text/csv":                 true,
	"application/csv":          true,
	"application/vnd.ms-excel": true,
	"text/plain":               true,
	"application/octet-stream": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": false,
}

var sniffedCSVTypes = map[string]bool{
	"text/plain":               true,
	"text/csv":                 true,
	"application/csv":          true,
	"application/octet-stream": true,
}

// ValidateClientContentType checks the Content-Type the client declared for the file part.
func ValidateClientContentType(contentType string) error {
	mediaType := normalizeMediaType(contentType)
	if !declaredCSVTypes[mediaType] {
		logger.L.Warn("Disallowed client-declared Content-Type", "contentType", contentType)
		return fmt.Errorf("%w: '%s' is not allowed for a payout CSV", ErrUnsupportedFileType, contentType)
	}
	return nil
}

// ValidateFileContentByMagicBytes sniffs the first 512 bytes of file and rewinds it. It
// returns the detected media type.
func ValidateFileContentByMagicBytes(file io.ReadSeeker) (string, error) {
	if file == nil {
		return "", errors.New("file is nil")
	}

	buffer := make([]byte, 512)
	n, err := io.ReadFull(file, buffer)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", fmt.Errorf("failed to read file for content type checking: %w", err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to reset file read pointer: %w", err)
	}

	detected := normalizeMediaType(http.DetectContentType(buffer[:n]))
	if !sniffedCSVTypes[detected] {
		logger.L.Warn("Disallowed detected file content type (magic bytes)", "detectedContentType", detected)
		return detected, fmt.Errorf("%w: content looks like '%s', not a CSV file", ErrUnsupportedFileType, detected)
	}

	logger.L.Debug("File content type (magic bytes) validated", "detectedContentType", detected)
	return detected, nil
}

// ValidateCSVUpload runs both checks on an uploaded file part.
func ValidateCSVUpload(file io.ReadSeeker, declaredContentType string) error {
	if err := ValidateClientContentType(declaredContentType); err != nil {
		return err
	}
	_, err := ValidateFileContentByMagicBytes(file)
	return err
}

func normalizeMediaType(contentType string) string {
	mediaType, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(mediaType))
}
