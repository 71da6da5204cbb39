// Package assets manages uploaded overlay images (sponsor logos and the QR
// code) as plain files under one directory.
package assets

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mkraus12/courtside/internal/saves"
)

// ErrNotFound indicates a requested asset does not exist.
var ErrNotFound = errors.New("asset not found")

const (
	sponsorsDir = "sponsors"
	qrName      = "qr.png"
)

// Store keeps assets under a base directory.
type Store struct {
	base string
}

// Open ensures the asset directories exist.
func Open(base string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(base, sponsorsDir), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create assets dir: %w", err)
	}
	return &Store{base: base}, nil
}

// Sponsors lists sponsor image names, sorted.
func (s *Store) Sponsors() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.base, sponsorsDir))
	if err != nil {
		return nil, fmt.Errorf("failed to read sponsors dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// AddSponsor stores one sponsor image. The name is sanitized; an empty
// result is rejected.
func (s *Store) AddSponsor(name string, r io.Reader) (string, error) {
	name = saves.SanitizeName(name)
	if name == "" {
		return "", fmt.Errorf("invalid sponsor name")
	}
	if err := writeFile(filepath.Join(s.base, sponsorsDir, name), r); err != nil {
		return "", err
	}
	return name, nil
}

// DeleteSponsor removes a sponsor image by name.
func (s *Store) DeleteSponsor(name string) error {
	name = saves.SanitizeName(name)
	if name == "" {
		return ErrNotFound
	}
	err := os.Remove(filepath.Join(s.base, sponsorsDir, name))
	if os.IsNotExist(err) {
		return ErrNotFound
	}
	return err
}

// SponsorPath resolves a sponsor image to a filesystem path for serving.
func (s *Store) SponsorPath(name string) (string, error) {
	name = saves.SanitizeName(name)
	path := filepath.Join(s.base, sponsorsDir, name)
	if name == "" {
		return "", ErrNotFound
	}
	if _, err := os.Stat(path); err != nil {
		return "", ErrNotFound
	}
	return path, nil
}

// SetQR replaces the QR image. The upload keeps its extension so the
// content type stays guessable, but there is only ever one QR asset.
func (s *Store) SetQR(name string, r io.Reader) error {
	target := qrName
	if ext := strings.ToLower(filepath.Ext(saves.SanitizeName(name))); ext != "" {
		target = "qr" + ext
	}
	// Drop any previous QR with a different extension.
	old, err := s.QRPath()
	if err == nil && filepath.Base(old) != target {
		_ = os.Remove(old)
	}
	return writeFile(filepath.Join(s.base, target), r)
}

// QRPath returns the current QR image path, or ErrNotFound.
func (s *Store) QRPath() (string, error) {
	entries, err := os.ReadDir(s.base)
	if err != nil {
		return "", fmt.Errorf("failed to read assets dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())) == "qr" {
			return filepath.Join(s.base, e.Name()), nil
		}
	}
	return "", ErrNotFound
}

func writeFile(path string, r io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
