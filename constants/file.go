package constants

import "strings"

// Document formats the extractor knows how to route.
const (
	PDF     = "PDF"
	TEXT    = "TEXT"
	IMAGE   = "IMAGE"
	UNKNOWN = "UNKNOWN"
)

// Media types the pipeline names explicitly.
const (
	MediaTypePDF      = "application/pdf"
	MediaTypeText     = "text/plain"
	MediaTypeMarkdown = "text/markdown"
	MediaTypeOctet    = "application/octet-stream"
)


// AllowedExtensions holds the file extensions the CLI accepts for student documents.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"txt":  {},
	"md":   {},
	"png":  {},
	"jpg":  {},
	"jpeg": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToMediaType returns the declared media type for a file extension.
func MapExtToMediaType(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return MediaTypePDF
	case "txt":
		return MediaTypeText
	case "md", "markdown":
		return MediaTypeMarkdown
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	default:
		return ""
	}
}

// MapMediaTypeToFormat collapses a media type (parameters allowed) into a routing format.
func MapMediaTypeToFormat(mediaType string) string {
	mt := strings.ToLower(strings.TrimSpace(mediaType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	switch {
	case mt == MediaTypePDF:
		return PDF
	case strings.HasPrefix(mt, "text/"):
		return TEXT
	case strings.HasPrefix(mt, "image/"):
		return IMAGE
	default:
		return UNKNOWN
	}
}
