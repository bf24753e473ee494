package discover

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// IgnoreFileName lists extra ignore patterns, one per line.
const IgnoreFileName = ".netlogo-intel-ignore"

// skipDirs are directory names never descended into.
var skipDirs = map[string]bool{
	".git": true, ".hg": true, ".svn": true, ".idea": true, ".vscode": true,
	".netlogo-intel": true, "node_modules": true, "vendor": true,
	"build": true, "dist": true, "out": true, "target": true, "tmp": true,
}

// Kind tells how a file's code is stored.
type Kind string

const (
	// KindSource is plain NetLogo code, such as an __includes file.
	KindSource Kind = "source"
	// KindModel is a model file whose first section is the code.
	KindModel Kind = "model"
)

var kinds = map[string]Kind{
	".nls":     KindSource,
	".nlogo":   KindModel,
	".nlogo3d": KindModel,
}

// FileInfo represents a discovered NetLogo file.
type FileInfo struct {
	Path    string // absolute path
	RelPath string // slash-separated, relative to the root
	Kind    Kind
}

// Options configures file discovery.
type Options struct {
	// Ignore holds doublestar patterns matched against relative paths.
	Ignore []string
	// IgnoreFile overrides the ignore file looked up in the root.
	IgnoreFile string
}

// KindOf reports the kind of a path by extension.
func KindOf(path string) (Kind, bool) {
	k, ok := kinds[strings.ToLower(filepath.Ext(path))]
	return k, ok
}

// SkipDir reports whether a directory name is never descended into.
func SkipDir(name string) bool {
	return skipDirs[name]
}

// Ignored reports whether the relative path or its base name matches one of
// the patterns.
func Ignored(rel string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern, filepath.Base(rel)); ok {
			return true
		}
	}
	return false
}

// Discover walks root and returns every NetLogo file not ignored.
func Discover(ctx context.Context, root string, opts *Options) ([]FileInfo, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	patterns := Patterns(root, opts)

	var files []FileInfo
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		rel, _ := filepath.Rel(root, path)
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if path != root && (skipDirs[d.Name()] || Ignored(rel, patterns)) {
				return filepath.SkipDir
			}
			return nil
		}
		kind, ok := KindOf(path)
		if !ok || Ignored(rel, patterns) {
			return nil
		}
		files = append(files, FileInfo{Path: path, RelPath: rel, Kind: kind})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover %s: %w", root, err)
	}
	return files, nil
}

// Patterns returns the configured ignore patterns plus those of the ignore
// file found in root.
func Patterns(root string, opts *Options) []string {
	if opts == nil {
		opts = &Options{}
	}
	patterns := append([]string(nil), opts.Ignore...)
	ignoreFile := opts.IgnoreFile
	if ignoreFile == "" {
		ignoreFile = filepath.Join(root, IgnoreFileName)
	}
	if extra, err := loadIgnoreFile(ignoreFile); err == nil {
		patterns = append(patterns, extra...)
	}
	return patterns
}

func loadIgnoreFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			patterns = append(patterns, line)
		}
	}
	return patterns, scanner.Err()
}
