package fsindex

import "strings"

// Category is the coarse file classification shown by the listing UI.
type Category string

const (
	CategoryImage      Category = "image"
	CategoryDocument   Category = "document"
	CategoryText       Category = "text"
	CategoryArchive    Category = "archive"
	CategoryVideo      Category = "video"
	CategoryAudio      Category = "audio"
	CategoryExecutable Category = "executable"
	CategoryFile       Category = "file"
)

var categories = map[string]Category{
	".jpg": CategoryImage, ".jpeg": CategoryImage, ".png": CategoryImage,
	".gif": CategoryImage, ".bmp": CategoryImage, ".webp": CategoryImage,

	".pdf": CategoryDocument, ".doc": CategoryDocument, ".docx": CategoryDocument,
	".ppt": CategoryDocument, ".pptx": CategoryDocument,

	".txt": CategoryText, ".md": CategoryText, ".json": CategoryText,
	".xml": CategoryText, ".csv": CategoryText,

	".zip": CategoryArchive, ".rar": CategoryArchive, ".7z": CategoryArchive,
	".tar": CategoryArchive, ".gz": CategoryArchive,

	".mp4": CategoryVideo, ".avi": CategoryVideo, ".mkv": CategoryVideo,
	".mov": CategoryVideo, ".wmv": CategoryVideo,

	".mp3": CategoryAudio, ".wav": CategoryAudio, ".flac": CategoryAudio,
	".aac": CategoryAudio, ".ogg": CategoryAudio,

	".exe": CategoryExecutable, ".msi": CategoryExecutable,
}

var mimeTypes = map[string]string{
	".html":  "text/html",
	".htm":   "text/html",
	".css":   "text/css",
	".js":    "application/javascript",
	".json":  "application/json",
	".xml":   "application/xml",
	".txt":   "text/plain",
	".md":    "text/markdown",
	".csv":   "text/csv",
	".png":   "image/png",
	".jpg":   "image/jpeg",
	".jpeg":  "image/jpeg",
	".gif":   "image/gif",
	".bmp":   "image/bmp",
	".webp":  "image/webp",
	".svg":   "image/svg+xml",
	".ico":   "image/x-icon",
	".pdf":   "application/pdf",
	".zip":   "application/zip",
	".gz":    "application/gzip",
	".tar":   "application/x-tar",
	".mp4":   "video/mp4",
	".webm":  "video/webm",
	".mp3":   "audio/mpeg",
	".wav":   "audio/wav",
	".ogg":   "audio/ogg",
	".woff":  "font/woff",
	".woff2": "font/woff2",
}

// FileCategory classifies a file extension. Unknown extensions are plain files.
func FileCategory(ext string) Category {
	if c, ok := categories[strings.ToLower(ext)]; ok {
		return c
	}
	return CategoryFile
}

// MimeType maps a file extension to the MIME type used for inline serving.
func MimeType(ext string) string {
	if m, ok := mimeTypes[strings.ToLower(ext)]; ok {
		return m
	}
	return "application/octet-stream"
}
