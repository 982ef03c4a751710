// Package media discovers candidate input files under a directory tree and
// maps them to their mirrored output locations.
package media

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// Kind classifies a recognized media file. Informational only; the
// transcription step handles both the same way.
type Kind string

const (
	KindAudio Kind = "audio"
	KindVideo Kind = "video"
)

var audioExtensions = map[string]Kind{
	".mp3":  KindAudio,
	".wav":  KindAudio,
	".m4a":  KindAudio,
	".flac": KindAudio,
	".ogg":  KindAudio,
	".aac":  KindAudio,
	".wma":  KindAudio,
}

var videoExtensions = map[string]Kind{
	".mp4":  KindVideo,
	".mkv":  KindVideo,
	".mov":  KindVideo,
	".avi":  KindVideo,
	".webm": KindVideo,
}

// KindForPath returns the media kind for a path based on its extension,
// matched case-insensitively. The false return means the extension is not
// recognized.
func KindForPath(path string) (Kind, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if kind, ok := audioExtensions[ext]; ok {
		return kind, true
	}
	if kind, ok := videoExtensions[ext]; ok {
		return kind, true
	}
	return "", false
}

// ErrOutsideRoot indicates a discovered file resolves outside the input
// root and cannot be mapped to an output path safely.
var ErrOutsideRoot = errors.New("path escapes input root")

// Item is a discovered candidate input file awaiting tracking.
type Item struct {
	// Path is the absolute input path, the item's identity.
	Path string
	// Rel is the path relative to the input root, used to mirror the
	// directory structure under the output root.
	Rel string
	// Kind is the inferred media kind.
	Kind Kind
}

// WarnFunc receives non-fatal discovery problems (unreadable directories,
// unmappable entries). The walk continues after each call.
type WarnFunc func(path string, err error)

// Scan walks root and returns recognized media files ordered by full path.
// Hidden entries and unrecognized extensions are silently excluded;
// unreadable subtrees are reported through warn and skipped. Repeated scans
// of an unchanged tree yield identical ordering.
func Scan(root string, warn WarnFunc) ([]Item, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve input root: %w", err)
	}
	if warn == nil {
		warn = func(string, error) {}
	}

	var items []Item
	walkErr := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return fmt.Errorf("read input root: %w", err)
			}
			warn(path, err)
			if entry != nil && entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") && path != root {
			if entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if entry.IsDir() {
			return nil
		}
		kind, ok := KindForPath(path)
		if !ok {
			return nil
		}
		rel, relErr := relativeTo(root, path)
		if relErr != nil {
			warn(path, relErr)
			return nil
		}
		items = append(items, Item{Path: path, Rel: rel, Kind: kind})
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	// WalkDir visits lexically, but sort anyway so the ordering contract
	// does not depend on walk internals.
	sort.Slice(items, func(i, j int) bool { return items[i].Path < items[j].Path })
	return items, nil
}

func relativeTo(root, path string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", fmt.Errorf("relativize %q: %w", path, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrOutsideRoot, path)
	}
	return rel, nil
}

// OutputBase computes the base output path for an item: the item's relative
// path mirrored under outputRoot with the media extension stripped. The
// result writer appends the format suffix. Pure; never touches the
// filesystem.
func OutputBase(outputRoot string, item Item) string {
	rel := item.Rel
	if ext := filepath.Ext(rel); ext != "" {
		rel = strings.TrimSuffix(rel, ext)
	}
	return filepath.Join(outputRoot, rel)
}
