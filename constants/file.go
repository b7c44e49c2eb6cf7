package constants

import "strings"

// Defaults for the batch controller. Both can be overridden via environment
// configuration; see internal/common.
const (
	DefaultDailyQuota    = 5
	DefaultMaxFileSizeMB = 5
)

// AllowedExtensions holds the file extensions accepted for invoice documents.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsAllowedExt reports whether ext (with or without a leading dot) is an
// accepted document extension.
func IsAllowedExt(ext string) bool {
	_, ok := AllowedExtensions[NormalizeExt(ext)]
	return ok
}
