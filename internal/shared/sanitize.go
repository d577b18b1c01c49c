package shared

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const maxFilenameBytes = 255

var (
	illegalChars  = regexp.MustCompile(`[/?<>\\:*|"]`)
	controlChars  = regexp.MustCompile(`[\x00-\x1f\x80-\x9f]`)
	reservedNames = regexp.MustCompile(`^\.+$`)
	windowsNames  = regexp.MustCompile(`(?i)^(con|prn|aux|nul|com[0-9]|lpt[0-9])(\..*)?$`)
)

// SanitizeFilename strips characters that are illegal in file names on common
// filesystems and truncates the result to 255 bytes without splitting a rune.
// It may return an empty string.
func SanitizeFilename(name string) string {
	name = norm.NFC.String(name)
	name = illegalChars.ReplaceAllString(name, "")
	name = controlChars.ReplaceAllString(name, "")
	name = reservedNames.ReplaceAllString(name, "")
	name = windowsNames.ReplaceAllString(name, "")
	name = strings.TrimRight(name, ". ")

	return truncateBytes(name, maxFilenameBytes)
}

// FileName sanitizes stem and appends "."+ext, trimming the stem so the whole
// name fits in 255 bytes.
func FileName(stem, ext string) string {
	suffix := "." + ext
	stem = truncateBytes(SanitizeFilename(stem), maxFilenameBytes-len(suffix))
	return strings.TrimRight(stem, ". ") + suffix
}

func truncateBytes(name string, limit int) string {
	for len(name) > limit {
		_, size := utf8.DecodeLastRuneInString(name)
		name = name[:len(name)-size]
	}
	return name
}
