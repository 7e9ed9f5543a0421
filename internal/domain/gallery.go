package domain

import (
	"path"
	"strings"
)

// EntryTag identifies the kind of a directory entry
type EntryTag string

const (
	// EntryTagFile marks a regular file entry
	EntryTagFile EntryTag = "file"
	// EntryTagFolder marks a navigable subfolder entry
	EntryTagFolder EntryTag = "folder"
)

// DirectoryEntry represents one item returned by the provider's listing call
type DirectoryEntry struct {
	Tag       EntryTag `json:"tag"`
	Name      string   `json:"name"`
	PathLower string   `json:"path_lower"`
}

// SubFolder describes a navigable subfolder in a listing
type SubFolder struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Listing is the aggregate produced by one folder traversal: temporary image
// URLs and subfolders, both in provider order. It is built fresh per request
// and never cached.
type Listing struct {
	Images     []string    `json:"images"`
	SubFolders []SubFolder `json:"sub_folders"`
	Cursor     string      `json:"cursor,omitempty"`
}

// Empty reports whether the listing contains neither images nor subfolders
func (l *Listing) Empty() bool {
	return len(l.Images) == 0 && len(l.SubFolders) == 0
}

// imageExtensions is the set of renderable image file extensions
var imageExtensions = map[string]struct{}{
	".gif":  {},
	".jpg":  {},
	".jpeg": {},
	".tiff": {},
	".png":  {},
}

// IsImage reports whether the file path names a supported image type.
// The extension match is case-insensitive.
func IsImage(p string) bool {
	ext := strings.ToLower(path.Ext(p))
	_, ok := imageExtensions[ext]
	return ok
}

// ParentPath drops exactly the last segment of a slash-separated gallery
// path. The parent of a single-segment path is the root (empty string).
func ParentPath(p string) string {
	idx := strings.LastIndex(p, "/")
	if idx < 0 {
		return ""
	}
	return p[:idx]
}
