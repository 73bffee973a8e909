// Package blob stores uploaded photos and homework attachments. The returned
// URL is the only reference the record store keeps.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
	"unicode"
)

// Folders accepted by Put.
const (
	FolderStudents = "students"
	FolderTeachers = "teachers"
	FolderHomework = "homework"
)

// ErrUnknownFolder is returned for a folder outside the known set.
var ErrUnknownFolder = errors.New("unknown upload folder")

// Store uploads a blob and returns its public URL.
type Store interface {
	Put(ctx context.Context, folder, filename string, r io.Reader) (string, error)
}

// ValidFolder reports whether folder is one of the upload folders.
func ValidFolder(folder string) bool {
	switch folder {
	case FolderStudents, FolderTeachers, FolderHomework:
		return true
	}
	return false
}

// ObjectPath builds "{folder}/{unixMillis}_{filename}".
func ObjectPath(folder, filename string, at time.Time) (string, error) {
	if !ValidFolder(folder) {
		return "", fmt.Errorf("%w: %q", ErrUnknownFolder, folder)
	}
	return fmt.Sprintf("%s/%d_%s", folder, at.UnixMilli(), CleanName(filename)), nil
}

// CleanName keeps the base name and replaces anything outside letters,
// digits, dot, dash and underscore.
func CleanName(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		return "file"
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '-' || r == '_' {
			return r
		}
		return '_'
	}, base)
}
