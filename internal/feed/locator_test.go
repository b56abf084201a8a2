package feed

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLatestPublishedDirectory(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{"20240708", "20240709", "2024071", "latest", "202407100"} {
		if err := os.Mkdir(filepath.Join(root, dir), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}
	writeFile(t, filepath.Join(root, "20991231"), "not a directory")

	got, err := LatestPublishedDirectory(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "20240709" {
		t.Fatalf("unexpected directory: %s", got)
	}
	again, _ := LatestPublishedDirectory(root)
	if again != got {
		t.Fatalf("expected idempotent result, got %s then %s", got, again)
	}
}

func TestLatestPublishedDirectoryMissingRoot(t *testing.T) {
	got, err := LatestPublishedDirectory(filepath.Join(t.TempDir(), "missing"))
	if got != "" {
		t.Fatalf("expected empty result, got %s", got)
	}
	var derr *DiscoveryError
	if !errors.As(err, &derr) {
		t.Fatalf("expected DiscoveryError, got %v", err)
	}
}

func TestLatestPublishedDirectoryEmpty(t *testing.T) {
	got, err := LatestPublishedDirectory(t.TempDir())
	if err != nil || got != "" {
		t.Fatalf("expected empty result, got %q %v", got, err)
	}
}

func TestLatestFile(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"202407091200.csv", "202407091230.csv", "202407091245.csv.tmp", "readme.txt", "20240709124.csv"} {
		writeFile(t, filepath.Join(dir, name), "header\n")
	}
	if err := os.Mkdir(filepath.Join(dir, "202407092359.csv"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	got, err := LatestFile(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != filepath.Join(dir, "202407091230.csv") {
		t.Fatalf("unexpected file: %s", got)
	}
	again, _ := LatestFile(dir)
	if again != got {
		t.Fatalf("expected idempotent result")
	}
}

func TestLatestFilePrefersLaterTimestamp(t *testing.T) {
	pairs := [][2]string{
		{"202407090930.csv", "202407091000.csv"},
		{"202312312359.csv", "202401010000.csv"},
		{"202407091230.txt", "202407091231.txt"},
	}
	for _, pair := range pairs {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, pair[1]), "h\n")
		writeFile(t, filepath.Join(dir, pair[0]), "h\n")
		got, err := LatestFile(dir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if filepath.Base(got) != pair[1] {
			t.Fatalf("expected %s, got %s", pair[1], got)
		}
	}
}

func TestLatestFileNone(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "notes.csv"), "h\n")
	got, err := LatestFile(dir)
	if err != nil || got != "" {
		t.Fatalf("expected empty result, got %q %v", got, err)
	}
}

func TestLocatorLatest(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "20240708", "202407082330.csv"), "h\n")
	writeFile(t, filepath.Join(root, "20240709", "202407090030.csv"), "h\n")
	writeFile(t, filepath.Join(root, "20240709", "202407091230.csv"), "h\n")

	got, err := Locator{Root: root}.Latest()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != filepath.Join(root, "20240709", "202407091230.csv") {
		t.Fatalf("unexpected file: %s", got)
	}
	if Stem(got) != "202407091230" {
		t.Fatalf("unexpected stem: %s", Stem(got))
	}
}

func TestLocatorLatestEmptyDay(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "20240708", "202407082330.csv"), "h\n")
	if err := os.Mkdir(filepath.Join(root, "20240709"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	got, err := Locator{Root: root}.Latest()
	if err != nil || got != "" {
		t.Fatalf("expected nothing in the newest day, got %q %v", got, err)
	}
}

func TestLocatorFollowsSymlinks(t *testing.T) {
	store := t.TempDir()
	writeFile(t, filepath.Join(store, "day", "payload.csv"), "h\n")
	writeFile(t, filepath.Join(store, "202407101200.csv"), "h\n")

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "20240709", "202407090600.csv"), "h\n")
	if err := os.Symlink(filepath.Join(store, "day"), filepath.Join(root, "20240710")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	if err := os.Symlink(filepath.Join(store, "202407101200.csv"), filepath.Join(store, "day", "202407101200.csv")); err != nil {
		t.Fatalf("symlink file: %v", err)
	}
	// A dangling link is neither a directory nor a file.
	if err := os.Symlink(filepath.Join(store, "missing"), filepath.Join(root, "20240711")); err != nil {
		t.Fatalf("symlink dangling: %v", err)
	}

	day, err := LatestPublishedDirectory(root)
	if err != nil || day != "20240710" {
		t.Fatalf("expected symlinked day, got %q %v", day, err)
	}
	got, err := Locator{Root: root}.Latest()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != filepath.Join(root, "20240710", "202407101200.csv") {
		t.Fatalf("expected symlinked file, got %q", got)
	}
}
