package constants

import "strings"

// FileTypes holds the allowed values for the source column of extract_job.
var FileTypes = []string{"PDF", "TXT"}

// AllowedExtensions holds the default extensions picked up by batch runs.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
	"txt": {},
}

// AllowedUploadTypes lists content types accepted by the upload endpoint.
var AllowedUploadTypes = []string{"application/pdf"}

const (
	PDF = "PDF"
	TXT = "TXT"

	// MaxFileSizeDefault is the upload limit in bytes (50MB).
	MaxFileSizeDefault int64 = 50 * 1024 * 1024
)

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat maps a normalized extension to one of FileTypes, or "" if unsupported.
func MapExtToFormat(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "txt", "text":
		return TXT
	default:
		return ""
	}
}
