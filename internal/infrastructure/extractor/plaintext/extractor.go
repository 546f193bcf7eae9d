package plaintext

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/kirillkom/brandvoice-promptgen/internal/core/domain"
)

// MaxUploadBytes bounds the size of one uploaded post file.
const MaxUploadBytes = 1 << 20

var supportedExtensions = map[string]struct{}{
	".txt": {},
	".md":  {},
}

// Decoder turns an uploaded .txt or .md file into post text.
type Decoder struct{}

func NewDecoder() *Decoder {
	return &Decoder{}
}

func (d *Decoder) Decode(_ context.Context, filename string, body io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := supportedExtensions[ext]; !ok {
		return "", domain.NewValidationError("decode upload", fmt.Sprintf("Unsupported file type %q - upload a .txt or .md file", ext))
	}

	raw, err := io.ReadAll(io.LimitReader(body, MaxUploadBytes+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if len(raw) > MaxUploadBytes {
		return "", domain.NewValidationError("decode upload", "File too large - maximum size is 1 MB")
	}
	raw = []byte(strings.TrimPrefix(string(raw), "\ufeff"))
	if !utf8.Valid(raw) {
		return "", domain.NewValidationError("decode upload", "File is not valid UTF-8 text")
	}

	text := strings.TrimSpace(string(raw))
	if text == "" {
		return "", domain.NewValidationError("decode upload", "Empty file - Type or load an Instagram post")
	}
	return text, nil
}
