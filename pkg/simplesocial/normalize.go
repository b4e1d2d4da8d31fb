package simplesocial

import (
	"path/filepath"
	"strings"
)

const altSuffix = "-alt"

// NormalizeBasename reduces a filename to the identifier shared by every file
// of one logical post: the extension is stripped, then a trailing "-alt"
// marker, then a trailing "-<digits>" numeric suffix, in that order.
//
//	sunset.txt        -> sunset
//	sunset-alt.txt    -> sunset
//	sunset-2.jpg      -> sunset
//	sunset-2-alt.txt  -> sunset
//	mid-day.jpg       -> mid-day  (suffix is not numeric)
func NormalizeBasename(filename string) string {
	base := stem(filepath.Base(filename))

	base = strings.TrimSuffix(base, altSuffix)

	if i := strings.LastIndex(base, "-"); i >= 0 && isDigits(base[i+1:]) {
		base = base[:i]
	}

	return base
}

// stem returns the filename without its extension.
func stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// isDigits reports whether s is non-empty and all ASCII digits.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// classify maps a filename to its media kind by extension.
func classify(name string) MediaKind {
	ext := strings.ToLower(filepath.Ext(name))
	switch {
	case ext == ".txt":
		return MediaKindText
	default:
		if _, ok := imageExtensions[ext]; ok {
			return MediaKindImage
		}
		if _, ok := videoExtensions[ext]; ok {
			return MediaKindVideo
		}
		return MediaKindOther
	}
}
