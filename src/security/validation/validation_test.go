package validation

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeCSVCell(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"=SUM(A1:A2)", "'=SUM(A1:A2)"},
		{"+1", "'+1"},
		{"-1", "'-1"},
		{"@cmd", "'@cmd"},
		{"  =x", "'  =x"},
		{"1200", "1200"},
		{"2024-01-01", "2024-01-01"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeCSVCell(tt.in))
		})
	}
}

func TestSanitizeHeader(t *testing.T) {
	assert.Equal(t, "Gross Robux", SanitizeHeader("  Gross\x00 Robux "))
	assert.Equal(t, "Ad Spend", SanitizeHeader("Ad\nSpend"))
	long := strings.Repeat("é", MaxHeaderLength+10)
	assert.Equal(t, MaxHeaderLength, len([]rune(SanitizeHeader(long))))
}

func TestValidateClientContentType(t *testing.T) {
	for _, ok := range []string{"text/csv", "text/csv; charset=utf-8", "application/vnd.ms-excel", "TEXT/PLAIN", ""} {
		assert.NoError(t, ValidateClientContentType(ok), ok)
	}
	for _, bad := range []string{"image/png", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "application/pdf"} {
		assert.ErrorIs(t, ValidateClientContentType(bad), ErrUnsupportedFileType, bad)
	}
}

func TestValidateFileContentByMagicBytesRewinds(t *testing.T) {
	content := "Date,Gross Robux\n2024-01-01,1000\n"
	file := strings.NewReader(content)

	detected, err := ValidateFileContentByMagicBytes(file)
	require.NoError(t, err)
	assert.Equal(t, "text/plain", detected)

	rest, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Equal(t, content, string(rest))
}

func TestValidateFileContentByMagicBytesRejectsBinary(t *testing.T) {
	png := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 32)...)
	detected, err := ValidateFileContentByMagicBytes(bytes.NewReader(png))
	assert.ErrorIs(t, err, ErrUnsupportedFileType)
	assert.Equal(t, "image/png", detected)
}

func TestValidateCSVUpload(t *testing.T) {
	assert.NoError(t, ValidateCSVUpload(strings.NewReader("a,b\n1,2\n"), "text/csv"))
	assert.Error(t, ValidateCSVUpload(strings.NewReader("a,b\n1,2\n"), "image/gif"))
}
