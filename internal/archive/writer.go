// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/pdiddy/flomo2obsidian/pkg/types"
)

// AttachmentsDir is the folder name of relocated images inside the output
// archive. Rendered image links point into it.
const AttachmentsDir = "Attachments"

// Written describes a packaged output archive.
type Written struct {
	Path        string
	Documents   int
	Attachments int
}

// Write packages the rendered daily documents and the contents of
// attachmentsDir into a zip at outputPath, replacing any existing file.
// Documents without rendered text are skipped. The output always holds an
// Attachments/ folder entry. Failures return ErrPackagingFailed.
func Write(ctx context.Context, docs []types.DailyDocument, rendered map[string]string, attachmentsDir, stagingParent, outputPath string) (*Written, error) {
	staging, err := os.MkdirTemp(stagingParent, "stage-*")
	if err != nil {
		return nil, types.NewStageError(types.ErrPackagingFailed, "creating staging directory", err)
	}
	defer Release(staging)

	w := &Written{Path: outputPath}
	for _, doc := range docs {
		text, ok := rendered[doc.Key()]
		if !ok {
			slog.Debug("no rendered text, skipping", "day", doc.Key())
			continue
		}
		if err := os.WriteFile(filepath.Join(staging, doc.Filename()), []byte(text), 0o644); err != nil {
			return nil, types.NewStageError(types.ErrPackagingFailed, doc.Filename(), err)
		}
		w.Documents++
	}

	stagedAttachments := filepath.Join(staging, AttachmentsDir)
	if err := os.MkdirAll(stagedAttachments, 0o755); err != nil {
		return nil, types.NewStageError(types.ErrPackagingFailed, "creating attachments folder", err)
	}
	if attachmentsDir != "" {
		n, err := copyFlat(attachmentsDir, stagedAttachments)
		if err != nil {
			return nil, types.NewStageError(types.ErrPackagingFailed, "staging attachments", err)
		}
		w.Attachments = n
	}

	if err := ctx.Err(); err != nil {
		return nil, types.NewStageError(types.ErrPackagingFailed, "cancelled", err)
	}

	if err := zipTree(staging, outputPath); err != nil {
		return nil, types.NewStageError(types.ErrPackagingFailed, outputPath, err)
	}

	slog.Debug("wrote output archive", "path", outputPath, "documents", w.Documents, "attachments", w.Attachments)
	return w, nil
}

// copyFlat copies the regular files directly inside src into dst.
func copyFlat(src, dst string) (int, error) {
	entries, err := os.ReadDir(src)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	n := 0
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if err := copyFile(filepath.Join(src, e.Name()), filepath.Join(dst, e.Name())); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// zipTree writes every file and directory below root into a zip archive.
// The archive is written beside outputPath and renamed into place.
func zipTree(root, outputPath string) error {
	if dir := filepath.Dir(outputPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != root {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("walking staging directory: %w", err)
	}
	sort.Strings(paths)

	tmp, err := os.CreateTemp(filepath.Dir(outputPath), ".flomo2obsidian-*.zip")
	if err != nil {
		return fmt.Errorf("creating temp archive: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	zw := zip.NewWriter(tmp)
	for _, path := range paths {
		if err := addEntry(zw, root, path); err != nil {
			zw.Close()
			tmp.Close()
			return err
		}
	}
	if err := zw.Close(); err != nil {
		tmp.Close()
		return fmt.Errorf("finishing archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp archive: %w", err)
	}
	if err := os.Rename(tmpName, outputPath); err != nil {
		return fmt.Errorf("moving archive into place: %w", err)
	}
	return nil
}

func addEntry(zw *zip.Writer, root, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return err
	}

	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	hdr.Name = filepath.ToSlash(rel)
	if info.IsDir() {
		hdr.Name += "/"
		hdr.Method = zip.Store
		_, err := zw.CreateHeader(hdr)
		return err
	}
	hdr.Method = zip.Deflate

	dst, err := zw.CreateHeader(hdr)
	if err != nil {
		return fmt.Errorf("adding %s: %w", hdr.Name, err)
	}
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("adding %s: %w", hdr.Name, err)
	}
	return nil
}
