package feed

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Names are compared as strings, so both patterns are anchored and fixed
// width: only then does lexicographic order equal chronological order.
var (
	dayPattern   = regexp.MustCompile(`^\d{8}$`)
	stampPattern = regexp.MustCompile(`^\d{12}$`)
)

// LatestPublishedDirectory returns the greatest YYYYMMDD subdirectory name
// of root, or "" when there is none. A missing or unreadable root yields ""
// together with a *DiscoveryError.
func LatestPublishedDirectory(root string) (string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return "", &DiscoveryError{Path: root, Err: err}
	}
	latest := ""
	for _, entry := range entries {
		name := entry.Name()
		if name <= latest || !dayPattern.MatchString(name) {
			continue
		}
		if isKind(root, entry, fs.ModeDir) {
			latest = name
		}
	}
	return latest, nil
}

// LatestFile returns the path of the regular file in dir with the greatest
// name among those whose stem is a YYYYMMDDHHMM timestamp, or "".
func LatestFile(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", &DiscoveryError{Path: dir, Err: err}
	}
	latest := ""
	for _, entry := range entries {
		name := entry.Name()
		if name <= latest || !stampPattern.MatchString(Stem(name)) {
			continue
		}
		if isKind(dir, entry, 0) {
			latest = name
		}
	}
	if latest == "" {
		return "", nil
	}
	return filepath.Join(dir, latest), nil
}

// Stem is the base name of path without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Locator finds the newest published file under a feed root.
type Locator struct {
	Root string
}

// LatestDirectory returns the path of the newest dated directory, or "".
func (l Locator) LatestDirectory() (string, error) {
	day, err := LatestPublishedDirectory(l.Root)
	if err != nil || day == "" {
		return "", err
	}
	return filepath.Join(l.Root, day), nil
}

func (l Locator) LatestFile(dir string) (string, error) {
	return LatestFile(dir)
}

// Latest returns the newest data file in the newest dated directory, or ""
// when nothing has been published yet.
func (l Locator) Latest() (string, error) {
	dir, err := l.LatestDirectory()
	if err != nil || dir == "" {
		return "", err
	}
	return l.LatestFile(dir)
}

// isKind reports whether entry is a directory (kind == fs.ModeDir) or a
// regular file (kind == 0), following symlinks.
func isKind(dir string, entry fs.DirEntry, kind fs.FileMode) bool {
	mode := entry.Type()
	if mode&fs.ModeSymlink != 0 {
		info, err := os.Stat(filepath.Join(dir, entry.Name()))
		if err != nil {
			return false
		}
		mode = info.Mode()
	}
	if kind == fs.ModeDir {
		return mode.IsDir()
	}
	return mode.IsRegular()
}
