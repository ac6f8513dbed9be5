package file

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ReplaceExt swaps the extension of path for ext. ext may be given with or
// without the leading dot; an empty ext strips the extension.
func ReplaceExt(path, ext string) string {
	if path == "" {
		return path
	}

	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	dir := filepath.Dir(path)
	return filepath.Join(dir, BaseName(path)+ext)
}

// BaseName returns the file name of path without its final extension.
// Dot files such as ".hidden" keep their name.
func BaseName(path string) string {
	filename := filepath.Base(path)
	lastDot := strings.LastIndex(filename, ".")
	if lastDot <= 0 {
		return filename
	}
	return filename[:lastDot]
}

// SubtitlePath returns <dir>/<video-basename>.<lang>.srt for a video.
func SubtitlePath(videoPath, lang string) string {
	return ReplaceExt(videoPath, "."+lang+".srt")
}

// HasExt reports whether path ends in one of exts, case-insensitively.
func HasExt(path string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

// RawSubtitlePath returns a unique <tempDir>/<video-basename>.raw.<stream>.<uuid>.srt
// path for an extracted stream.
func RawSubtitlePath(tempDir, videoPath string, stream int) string {
	name := BaseName(videoPath) + ".raw." + strconv.Itoa(stream) + "." + uuid.NewString() + ".srt"
	return filepath.Join(tempDir, name)
}
