package parsing

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"code.sajari.com/docconv"
)

// ReadDocument extracts plain text from a resume file. Plain text and
// markdown are read as is; office and PDF formats go through docconv.
func ReadDocument(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".txt", ".md", "":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read resume file: %w", err)
		}
		return string(data), nil
	case ".pdf", ".docx", ".doc", ".odt", ".rtf":
		res, err := docconv.ConvertPath(path)
		if err != nil {
			return "", fmt.Errorf("convert %s document: %w", ext, err)
		}
		return res.Body, nil
	default:
		return "", fmt.Errorf("unsupported resume file type %q", ext)
	}
}
