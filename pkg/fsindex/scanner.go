package fsindex

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/byusi/indexfo/internal/models"
)

const modifiedLayout = "2006-01-02 15:04:05"

// ScanWarning records a child entry that could not be read during a scan.
// Warnings never abort the scan; the listing stays partial instead.
type ScanWarning struct {
	Path string
	Err  error
}

func (w ScanWarning) String() string {
	return fmt.Sprintf("%s: %v", w.Path, w.Err)
}

// Scanner produces directory listings confined to a Resolver's data root.
// It is stateless apart from the resolver and safe for concurrent use.
type Scanner struct {
	resolver *Resolver
}

// NewScanner creates a scanner on top of an existing resolver.
func NewScanner(resolver *Resolver) *Scanner {
	return &Scanner{resolver: resolver}
}

// Scan lists the immediate children of rel. A missing, unresolvable or
// non-directory target yields an empty listing with correct navigation
// metadata rather than an error. Per-item stat failures are returned as
// warnings alongside the rest of the listing.
func (s *Scanner) Scan(rel string) (models.DirectoryListing, []ScanWarning) {
	listing := models.DirectoryListing{
		Files:       []models.FileEntry{},
		Folders:     []models.FolderEntry{},
		TotalSize:   FormatSize(0),
		CurrentPath: rel,
		ParentPath:  ParentPath(rel),
	}

	target, err := s.resolver.ResolveDir(rel)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrNotADirectory) || errors.Is(err, ErrPathTraversal) {
			return listing, nil
		}
		return listing, []ScanWarning{{Path: rel, Err: err}}
	}

	entries, err := os.ReadDir(target)
	if err != nil {
		return listing, []ScanWarning{{Path: rel, Err: err}}
	}

	var warnings []ScanWarning
	var totalSize int64
	for _, entry := range entries {
		childRel := path.Join(rel, entry.Name())
		info, err := entry.Info()
		if err != nil {
			warnings = append(warnings, ScanWarning{Path: childRel, Err: err})
			continue
		}
		modified := info.ModTime().Format(modifiedLayout)
		switch {
		case info.IsDir():
			listing.Folders = append(listing.Folders, models.FolderEntry{
				Name:     entry.Name(),
				Path:     childRel,
				Modified: modified,
			})
		case info.Mode().IsRegular():
			listing.Files = append(listing.Files, models.FileEntry{
				Name:      entry.Name(),
				Path:      childRel,
				Size:      FormatSize(info.Size()),
				SizeBytes: info.Size(),
				Modified:  modified,
				Type:      string(FileCategory(filepath.Ext(entry.Name()))),
			})
			totalSize += info.Size()
		default:
			// sockets, devices and dangling symlinks are not listed
		}
	}

	sort.SliceStable(listing.Files, func(i, j int) bool {
		return strings.ToLower(listing.Files[i].Name) < strings.ToLower(listing.Files[j].Name)
	})
	sort.SliceStable(listing.Folders, func(i, j int) bool {
		return strings.ToLower(listing.Folders[i].Name) < strings.ToLower(listing.Folders[j].Name)
	})

	listing.FileCount = len(listing.Files)
	listing.FolderCount = len(listing.Folders)
	listing.TotalSize = FormatSize(totalSize)
	listing.TotalSizeBytes = totalSize
	return listing, warnings
}

// FormatSize renders a byte count with 1024-based units.
func FormatSize(size int64) string {
	if size == 0 {
		return "0 B"
	}
	value := float64(size)
	for _, unit := range []string{"B", "KB", "MB", "GB", "TB"} {
		if value < 1024 {
			return fmt.Sprintf("%.2f %s", value, unit)
		}
		value /= 1024
	}
	return fmt.Sprintf("%.2f PB", value)
}
