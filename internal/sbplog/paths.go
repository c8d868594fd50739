package sbplog

import (
	"path/filepath"
	"strings"

	"sbpzip/internal/constants"
)

// SplitExt splits path into a stem and an extension that starts at the first
// dot of the file name, so "a/b.sbp.json" gives "a/b" and ".sbp.json".
func SplitExt(path string) (stem, ext string) {
	dir, file := filepath.Split(path)
	if i := strings.Index(file, "."); i >= 0 {
		return dir + file[:i], file[i:]
	}
	return path, ""
}

func withSuffix(path, suffix string) string {
	stem, ext := SplitExt(path)
	return stem + suffix + ext
}

// BasePath is where the base half of a combined log is written.
func BasePath(combined string) string {
	return withSuffix(combined, constants.SuffixBase)
}

// RoverPath is where the rover half of a combined log is written.
func RoverPath(combined string) string {
	return withSuffix(combined, constants.SuffixRover)
}

// ZipPath is the default zipped output next to input.
func ZipPath(input string) string {
	return withSuffix(input, constants.SuffixZip)
}
