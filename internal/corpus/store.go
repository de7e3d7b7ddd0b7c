package corpus

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"
)

// FileEntry identifies one document inside the corpus.
type FileEntry struct {
	Filename string
	// RelPath is the corpus-relative path, always forward-slashed.
	RelPath string
	// YearFolder is set when the file lives under a year-numbered subfolder.
	YearFolder string
}

// DocumentStore abstracts document access so retrieval logic can target an
// indexed store later without change.
type DocumentStore interface {
	// List enumerates the document files in a corpus-relative folder.
	// A missing folder yields an empty list, not an error.
	List(folder string) ([]FileEntry, error)

	// Read returns the raw contents of a corpus-relative path.
	Read(relPath string) (string, error)
}

// FSStore is a DocumentStore over a corpus directory on disk. Leaf folders
// hold document files either directly or under year-numbered subfolders;
// List detects and normalizes both layouts.
type FSStore struct {
	root string
}

// NewFSStore creates a filesystem-backed document store rooted at root.
func NewFSStore(root string) *FSStore {
	return &FSStore{root: root}
}

var (
	yearDirRe  = regexp.MustCompile(`^\d{4}$`)
	htmlFileRe = regexp.MustCompile(`(?i)\.html?$`)
)

// List implements DocumentStore.
func (s *FSStore) List(folder string) ([]FileEntry, error) {
	abs := filepath.Join(s.root, filepath.FromSlash(folder))
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, nil
	}

	var yearDirs []string
	for _, e := range entries {
		if e.IsDir() && yearDirRe.MatchString(e.Name()) {
			yearDirs = append(yearDirs, e.Name())
		}
	}

	var out []FileEntry
	if len(yearDirs) > 0 {
		for _, year := range yearDirs {
			files, err := os.ReadDir(filepath.Join(abs, year))
			if err != nil {
				continue
			}
			for _, f := range files {
				if !f.IsDir() && htmlFileRe.MatchString(f.Name()) {
					out = append(out, FileEntry{
						Filename:   f.Name(),
						RelPath:    folder + "/" + year + "/" + f.Name(),
						YearFolder: year,
					})
				}
			}
		}
		return out, nil
	}

	for _, e := range entries {
		if !e.IsDir() && htmlFileRe.MatchString(e.Name()) {
			out = append(out, FileEntry{
				Filename: e.Name(),
				RelPath:  folder + "/" + e.Name(),
			})
		}
	}
	return out, nil
}

// Read implements DocumentStore. Files that are not valid UTF-8 are decoded
// as latin-1 so legacy corpus exports remain searchable.
func (s *FSStore) Read(relPath string) (string, error) {
	abs := filepath.Join(s.root, filepath.FromSlash(relPath))
	raw, err := os.ReadFile(abs)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", relPath, err)
	}
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	return decodeLatin1(raw), nil
}

func decodeLatin1(raw []byte) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, c := range raw {
		b.WriteRune(rune(c))
	}
	return b.String()
}

// EncodeDocID derives a stable document id from a corpus-relative path.
func EncodeDocID(relPath string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(relPath))
}

// DecodeDocID reverses EncodeDocID.
func DecodeDocID(id string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(id)
	if err != nil {
		return "", fmt.Errorf("invalid document id: %w", err)
	}
	return string(raw), nil
}
