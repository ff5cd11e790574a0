package routes

import (
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/labstack/echo/v4"
)

// readUpload returns the name and content of the multipart "file" field.
// allowed lists the accepted lowercase extensions.
func readUpload(c echo.Context, allowed ...string) (string, []byte, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return "", nil, fmt.Errorf("missing file: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if len(allowed) > 0 && !slices.Contains(allowed, ext) {
		return "", nil, fmt.Errorf("unsupported file type %q, expected one of %v", ext, allowed)
	}

	f, err := fh.Open()
	if err != nil {
		return "", nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(content) == 0 {
		return "", nil, fmt.Errorf("uploaded file %q is empty", fh.Filename)
	}
	return filepath.Base(fh.Filename), content, nil
}
