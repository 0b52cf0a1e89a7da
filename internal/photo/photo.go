// Package photo stores the images attached to rentals and problem reports
// as files under a root directory.
package photo

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
)

var dataURL = regexp.MustCompile(`^data:image/(\w+);base64,(.+)$`)

type Store struct {
	root string
}

func NewStore(root string) *Store {
	return &Store{root: root}
}

// Save decodes a data URL and writes it to <root>/<kind>/<name>.<ext>. It
// returns the path relative to root, or "" when data is not an image data URL.
func (s *Store) Save(kind, name, data string) (string, error) {
	m := dataURL.FindStringSubmatch(data)
	if m == nil {
		return "", nil
	}

	content, err := base64.StdEncoding.DecodeString(m[2])
	if err != nil {
		return "", fmt.Errorf("decode %s photo: %w", kind, err)
	}

	ext := "png"
	if m[1] == "jpeg" || m[1] == "jpg" {
		ext = "jpg"
	}

	dir := filepath.Join(s.root, kind)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	file := name + "." + ext
	if err := os.WriteFile(filepath.Join(dir, file), content, 0o644); err != nil {
		return "", err
	}
	return path.Join(kind, file), nil
}

// Remove deletes a file previously returned by Save. Removing a missing
// file is not an error.
func (s *Store) Remove(rel string) error {
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(rel)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
