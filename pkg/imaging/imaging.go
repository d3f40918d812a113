// pkg/imaging/imaging.go
package imaging

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
)

const sniffLen = 512

var allowed = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Detect reads the first bytes of r to determine its content type and returns
// a reader that still yields the full content. Only JPEG, PNG, GIF and WEBP
// are accepted.
func Detect(r io.Reader) (string, io.Reader, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", nil, fmt.Errorf("read image header: %w", err)
	}
	if n == 0 {
		return "", nil, fmt.Errorf("empty file")
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	if _, ok := allowed[contentType]; !ok {
		return "", nil, fmt.Errorf("invalid file type: %s, only JPEG, PNG, GIF and WEBP allowed", contentType)
	}
	return contentType, io.MultiReader(bytes.NewReader(head), r), nil
}

// Extension picks the file extension for an upload: the client's own if it
// agrees with the detected type, otherwise the canonical one.
func Extension(filename, contentType string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch {
	case contentType == "image/jpeg" && (ext == ".jpg" || ext == ".jpeg"):
		return ext
	case ext == allowed[contentType]:
		return ext
	}
	return allowed[contentType]
}
