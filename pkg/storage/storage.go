package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store persists generated documents and uploaded attachments. Paths are
// always relative to the store root so database records survive a move of
// the storage directory.
type Store interface {
	Save(relPath string, data []byte) error
	Read(relPath string) ([]byte, error)
}

// LocalStore is a filesystem-backed document store.
type LocalStore struct {
	root string
}

// NewLocalStore creates a store rooted at the given directory.
func NewLocalStore(root string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &LocalStore{root: root}, nil
}

func (s *LocalStore) Save(relPath string, data []byte) error {
	full, err := s.resolve(relPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}

func (s *LocalStore) Read(relPath string) ([]byte, error) {
	full, err := s.resolve(relPath)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	return data, nil
}

// resolve joins the relative path under the root and rejects traversal.
func (s *LocalStore) resolve(relPath string) (string, error) {
	clean := filepath.Clean("/" + relPath)
	full := filepath.Join(s.root, clean)
	if !strings.HasPrefix(full, filepath.Clean(s.root)+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid storage path: %s", relPath)
	}
	return full, nil
}

// ReceiptRelPath builds the canonical storage location of a receipt
// document: <PERFORMER>_<TAXCODE>/<YYYY-MM>/Ricevuta_<code>.pdf
func ReceiptRelPath(performerName, taxCode, yearMonth, receiptCode string) string {
	dir := Sanitize(strings.ToUpper(performerName)) + "_" + Sanitize(strings.ToUpper(taxCode))
	file := "Ricevuta_" + Sanitize(receiptCode) + ".pdf"
	return filepath.Join(dir, yearMonth, file)
}

// AttachmentRelPath builds the storage location of a signature attachment.
func AttachmentRelPath(performerName, taxCode, yearMonth, receiptCode, filename string) string {
	dir := Sanitize(strings.ToUpper(performerName)) + "_" + Sanitize(strings.ToUpper(taxCode))
	file := "Giustificativo_" + Sanitize(receiptCode) + "_" + Sanitize(filename)
	return filepath.Join(dir, yearMonth, file)
}

// Sanitize makes a value safe for use as a path segment.
func Sanitize(value string) string {
	value = strings.TrimSpace(value)
	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	return b.String()
}

var _ Store = (*LocalStore)(nil)
