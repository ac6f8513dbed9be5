package watch

import (
	"io/fs"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/Youngzheimer/subtrans/pkg/log"
)

var videoExts = []string{
	".mp4", ".mkv", ".avi", ".mov", ".m4v",
	".webm", ".ts", ".m2ts", ".wmv", ".flv",
}

// IsVideo reports whether path has a known video extension.
func IsVideo(path string) bool {
	return slices.Contains(videoExts, strings.ToLower(filepath.Ext(path)))
}

// ListVideos returns the absolute paths of video files under root, sorted.
// Hidden directories are skipped; subdirectories are walked only when
// recursive is set. Unreadable entries below root are logged and skipped.
func ListVideos(root string, recursive bool) ([]string, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, 64)
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			log.Warn("Skipping %s: %v", path, walkErr)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path == root {
				return nil
			}
			if !recursive || strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() || strings.HasPrefix(d.Name(), ".") || !IsVideo(d.Name()) {
			return nil
		}

		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(paths)
	return paths, nil
}
