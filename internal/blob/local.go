package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Local writes blobs below a directory served at baseURL.
type Local struct {
	Dir     string
	BaseURL string
	now     func() time.Time
}

// NewLocal creates a disk-backed store; baseURL is the public prefix the API
// serves Dir under, e.g. "http://localhost:8081/files".
func NewLocal(dir, baseURL string) *Local {
	return &Local{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/"), now: time.Now}
}

func (l *Local) Put(ctx context.Context, folder, filename string, r io.Reader) (string, error) {
	rel, err := ObjectPath(folder, filename, l.now())
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	full := filepath.Join(l.Dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("blob: create dir: %w", err)
	}
	f, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("blob: create file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(full)
		return "", fmt.Errorf("blob: write file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("blob: close file: %w", err)
	}
	return l.BaseURL + "/" + rel, nil
}
