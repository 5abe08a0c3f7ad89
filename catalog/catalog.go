package catalog

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"imagedup/logging"
)

// FileEntry describes one candidate image file found during enumeration.
type FileEntry struct {
	Path       string
	Size       int64
	ModTime    string
	Accessible bool
	FailReason string
}

// Catalog enumerates candidate image files under a root path.
type Catalog struct {
	Root       string
	extensions map[string]bool
}

// NewCatalog creates a catalog for the given root and extension
// allowlist. Extensions are matched case-insensitively.
func NewCatalog(root string, extensions []string) *Catalog {
	allow := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		allow[strings.ToLower(ext)] = true
	}
	return &Catalog{Root: root, extensions: allow}
}

// IsImageFile checks if a path's extension is on the allowlist
func (c *Catalog) IsImageFile(path string) bool {
	return c.extensions[strings.ToLower(filepath.Ext(path))]
}

// Enumerate walks the root and returns every allowlisted file, sorted
// by path so the result is deterministic across runs for an unchanged
// filesystem. Entries that fail the readability probe are returned with
// Accessible=false rather than aborting the walk; filenames with
// non-ASCII or symbol characters are ordinary paths here and never
// raise.
func (c *Catalog) Enumerate() ([]FileEntry, error) {
	if _, err := os.Stat(c.Root); err != nil {
		return nil, err
	}

	var entries []FileEntry
	err := filepath.WalkDir(c.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Record unreadable directories/files and keep walking
			logging.LogWarning("cannot access path %s: %v", path, err)
			if d != nil && !d.IsDir() && c.IsImageFile(path) {
				entries = append(entries, FileEntry{Path: path, FailReason: err.Error()})
			}
			return nil
		}
		if d.IsDir() || !c.IsImageFile(path) {
			return nil
		}

		info, statErr := d.Info()
		if statErr != nil {
			entries = append(entries, FileEntry{Path: path, FailReason: statErr.Error()})
			return nil
		}

		entry := FileEntry{
			Path:    path,
			Size:    info.Size(),
			ModTime: info.ModTime().UTC().Format(time.RFC3339),
		}
		if probeErr := probeReadable(path); probeErr != nil {
			entry.FailReason = probeErr.Error()
		} else {
			entry.Accessible = true
		}
		entries = append(entries, entry)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Stable order by path: group output and the results artifact
	// depend on it
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })

	return entries, nil
}

// probeReadable opens the file and reads a single byte, the cheapest
// check that the scan will actually be able to hash it later.
func probeReadable(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	buf := make([]byte, 1)
	if _, err := f.Read(buf); err != nil && err != io.EOF {
		return err
	}
	return nil
}
