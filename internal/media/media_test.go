package media_test

import (
	"path/filepath"
	"testing"

	"scribe/internal/media"
	"scribe/internal/testsupport"
)

func TestScanFindsSupportedFilesInOrder(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "b.mp3"), "x")
	testsupport.WriteFile(t, filepath.Join(root, "a.wav"), "x")
	testsupport.WriteFile(t, filepath.Join(root, "sub", "c.MP4"), "x")
	testsupport.WriteFile(t, filepath.Join(root, "notes.txt"), "x")
	testsupport.WriteFile(t, filepath.Join(root, "cover.jpg"), "x")

	items, err := media.Scan(root, nil)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d: %+v", len(items), items)
	}

	want := []string{"a.wav", "b.mp3", filepath.Join("sub", "c.MP4")}
	for i, item := range items {
		if item.Rel != want[i] {
			t.Fatalf("item %d: expected %q, got %q", i, want[i], item.Rel)
		}
		if !filepath.IsAbs(item.Path) {
			t.Fatalf("item path not absolute: %q", item.Path)
		}
	}
	if items[0].Kind != media.KindAudio {
		t.Fatalf("expected audio kind for a.wav, got %s", items[0].Kind)
	}
	if items[2].Kind != media.KindVideo {
		t.Fatalf("expected video kind for c.MP4, got %s", items[2].Kind)
	}
}

func TestScanSkipsHiddenEntries(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "keep.mp3"), "x")
	testsupport.WriteFile(t, filepath.Join(root, ".hidden.mp3"), "x")
	testsupport.WriteFile(t, filepath.Join(root, ".cache", "skip.mp3"), "x")

	items, err := media.Scan(root, nil)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(items) != 1 || items[0].Rel != "keep.mp3" {
		t.Fatalf("expected only keep.mp3, got %+v", items)
	}
}

func TestScanMissingRootFails(t *testing.T) {
	if _, err := media.Scan(filepath.Join(t.TempDir(), "nope"), nil); err == nil {
		t.Fatal("expected error for missing root")
	}
}

func TestScanEmptyTree(t *testing.T) {
	items, err := media.Scan(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no items, got %+v", items)
	}
}

func TestOutputBaseMirrorsRelativePath(t *testing.T) {
	item := media.Item{
		Path: "/in/podcasts/ep1.mp3",
		Rel:  filepath.Join("podcasts", "ep1.mp3"),
		Kind: media.KindAudio,
	}
	got := media.OutputBase("/out", item)
	want := filepath.Join("/out", "podcasts", "ep1")
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestOutputBaseWithoutExtension(t *testing.T) {
	item := media.Item{Rel: "raw"}
	if got := media.OutputBase("/out", item); got != filepath.Join("/out", "raw") {
		t.Fatalf("unexpected base %q", got)
	}
}

func TestKindForPathCaseInsensitive(t *testing.T) {
	if _, ok := media.KindForPath("clip.MKV"); !ok {
		t.Fatal("expected .MKV to be recognized")
	}
	if _, ok := media.KindForPath("notes.txt"); ok {
		t.Fatal("expected .txt to be rejected")
	}
	if _, ok := media.KindForPath("noext"); ok {
		t.Fatal("expected extensionless path to be rejected")
	}
}
