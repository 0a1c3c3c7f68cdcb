package models

// FileEntry describes one regular file inside the data root.
type FileEntry struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	Size      string `json:"size"`
	SizeBytes int64  `json:"size_bytes"`
	Modified  string `json:"modified"`
	Type      string `json:"type"`
}

// FolderEntry describes one immediate subdirectory.
type FolderEntry struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Modified string `json:"modified"`
}

// DirectoryListing is the on-demand view of a single directory level.
// It is recomputed from live filesystem state on every request.
type DirectoryListing struct {
	Files          []FileEntry   `json:"files"`
	Folders        []FolderEntry `json:"folders"`
	FolderCount    int           `json:"folder_count"`
	FileCount      int           `json:"file_count"`
	TotalSize      string        `json:"total_size"`
	TotalSizeBytes int64         `json:"total_size_bytes"`
	CurrentPath    string        `json:"current_path"`
	ParentPath     string        `json:"parent_path"`
}
