// Package contenttype maps file extensions to the Content-Type sent for them.
package contenttype

import "strings"

// Default is returned for unknown or missing extensions.
const Default = "text/plain"

var types = map[string]string{
	"acc":  "audio/mpeg",
	"css":  "text/css",
	"csv":  "text/csv",
	"f4v":  "video/x-flv",
	"flv":  "video/x-flv",
	"gif":  "image/gif",
	"html": "text/html",
	"ico":  "image/x-icon",
	"icon": "image/x-icon",
	"java": "application/java-archive",
	"jpeg": "image/jpeg",
	"jpg":  "image/jpeg",
	"js":   "text/javascript",
	"json": "application/json",
	"m4v":  "audio/mpeg",
	"mov":  "video/quicktime",
	"mp3":  "audio/mpeg",
	"mp4":  "video/mp4",
	"mpeg": "video/mpeg",
	"ogg":  "application/ogg",
	"pdf":  "application/pdf",
	"png":  "image/png",
	"tiff": "image/tiff",
	"wav":  "audio/wav",
	"webm": "video/webm",
	"xml":  "text/xml",
	"zip":  "application/zip",
}

// For returns the content type registered for ext. A leading dot is
// ignored and the lookup is exact, so callers lowercase first.
func For(ext string) string {
	if t, ok := types[strings.TrimPrefix(ext, ".")]; ok {
		return t
	}
	return Default
}

// ForPath lowercases the extension of path and looks it up.
func ForPath(path string) string {
	i := strings.LastIndexByte(path, '.')
	if i < 0 || strings.ContainsRune(path[i:], '/') {
		return Default
	}
	return For(strings.ToLower(path[i+1:]))
}
