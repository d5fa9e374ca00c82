// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive reads flomo export archives into a scratch directory and
// packages converted daily notes into the output archive.
package archive

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/pdiddy/flomo2obsidian/pkg/types"
)

const (
	// scratchPrefix names every scratch directory created by Extract.
	scratchPrefix = "flomo2obsidian-"
	// macosxDir holds resource forks added by the macOS archiver.
	macosxDir = "__MACOSX"
)

// Extraction describes an extracted input archive.
type Extraction struct {
	// Root is the scratch directory holding the archive contents. Release
	// it when the session ends.
	Root string

	// WorkingDir is Root, or the single top-level folder inside Root when
	// the archive wraps its content in one folder.
	WorkingDir string
}

// Validate checks that path names an existing .zip file.
func Validate(path string) error {
	if !strings.EqualFold(filepath.Ext(path), ".zip") {
		return types.NewStageError(types.ErrInvalidInput, fmt.Sprintf("%s is not a .zip file", path), nil)
	}
	info, err := os.Stat(path)
	if err != nil {
		return types.NewStageError(types.ErrInvalidInput, path, err)
	}
	if info.IsDir() {
		return types.NewStageError(types.ErrInvalidInput, fmt.Sprintf("%s is a directory", path), nil)
	}
	return nil
}

// Extract unpacks the archive at path into a new uniquely named directory
// under scratchParent (os.TempDir() when empty). On failure the scratch
// directory is removed and an ErrExtractionFailed error is returned.
func Extract(ctx context.Context, path, scratchParent string) (*Extraction, error) {
	if err := Validate(path); err != nil {
		return nil, err
	}
	if scratchParent == "" {
		scratchParent = os.TempDir()
	}

	root := filepath.Join(scratchParent, scratchPrefix+uuid.NewString())
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, types.NewStageError(types.ErrExtractionFailed, "creating scratch directory", err)
	}

	if err := unzip(ctx, path, root); err != nil {
		Release(root)
		return nil, types.NewStageError(types.ErrExtractionFailed, filepath.Base(path), err)
	}

	workingDir, err := workingDirectory(root)
	if err != nil {
		Release(root)
		return nil, types.NewStageError(types.ErrExtractionFailed, "reading scratch directory", err)
	}

	slog.Debug("extracted archive", "archive", path, "root", root, "working_dir", workingDir)
	return &Extraction{Root: root, WorkingDir: workingDir}, nil
}

func unzip(ctx context.Context, path, root string) error {
	r, err := zip.OpenReader(path)
	if err != nil {
		if r != nil {
			r.Close()
		}
		return fmt.Errorf("opening archive: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		name := filepath.FromSlash(f.Name)
		if first, _, _ := strings.Cut(f.Name, "/"); first == macosxDir {
			continue
		}

		target := filepath.Join(root, name)
		if !within(root, target) {
			return fmt.Errorf("entry %q escapes the archive root", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("creating %s: %w", f.Name, err)
			}
			continue
		}
		if err := extractFile(f, target); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", f.Name, err)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("opening entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("creating %s: %w", f.Name, err)
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return fmt.Errorf("writing %s: %w", f.Name, err)
	}
	return out.Close()
}

// workingDirectory returns the single top-level folder of root when it is
// the only visible entry, and root otherwise.
func workingDirectory(root string) (string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return "", err
	}
	var visible []fs.DirEntry
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		visible = append(visible, e)
	}
	if len(visible) == 1 && visible[0].IsDir() {
		return filepath.Join(root, visible[0].Name()), nil
	}
	return root, nil
}

// LocateDocument returns the first HTML file found by a depth-first walk
// of workingDir in lexical order.
func LocateDocument(workingDir string) (string, error) {
	var found string
	err := filepath.WalkDir(workingDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == macosxDir {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".html", ".htm":
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", types.NewStageError(types.ErrDocumentNotFound, workingDir, err)
	}
	if found == "" {
		return "", types.NewStageError(types.ErrDocumentNotFound, "no .html file in export", nil)
	}
	return found, nil
}

// Release removes dir and everything below it. Failures are logged and
// otherwise ignored.
func Release(dir string) {
	if dir == "" {
		return
	}
	if err := os.RemoveAll(dir); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("removing scratch directory", "dir", dir, "error", err)
	}
}

// within reports whether target lies inside root.
func within(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}
