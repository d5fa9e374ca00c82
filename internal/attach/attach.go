// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package attach relocates the images referenced by notes into one flat
// attachments folder, renaming on filename collisions.
package attach

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/flomo2obsidian/internal/render"
	"github.com/pdiddy/flomo2obsidian/pkg/types"
)

// Placement is one image to copy: the reference as written in the
// document, the resolved source file, and the allocated filename.
type Placement struct {
	Ref    string
	Source string
	Name   string
}

// Plan is the deterministic allocation of attachment filenames for a note
// set.
type Plan struct {
	// Placements are in note order, then image order within each note.
	// Each distinct reference appears once.
	Placements []Placement

	Mapping types.AttachmentMapping

	// Missing counts image references (duplicates included) whose source
	// file could not be resolved.
	Missing int
}

// Relocation describes a populated attachments folder.
type Relocation struct {
	Dir     string
	Mapping types.AttachmentMapping
	Copied  int
	Missing int
}

// NewPlan resolves every image reference of notes against sourceRoot and
// allocates a unique flat filename for each.
func NewPlan(sourceRoot string, notes []types.Note) *Plan {
	return plan(sourceRoot, notes, func(string) bool { return false })
}

func plan(sourceRoot string, notes []types.Note, exists func(name string) bool) *Plan {
	p := &Plan{Mapping: make(types.AttachmentMapping)}
	taken := make(map[string]bool)
	unresolved := make(map[string]bool)

	for _, note := range notes {
		for _, ref := range note.Images {
			if _, ok := p.Mapping[ref]; ok {
				continue
			}
			if unresolved[ref] {
				p.Missing++
				continue
			}
			src, ok := resolve(sourceRoot, ref)
			if !ok {
				slog.Debug("attachment not found", "ref", ref)
				unresolved[ref] = true
				p.Missing++
				continue
			}
			name := allocate(filepath.Base(src), func(n string) bool { return taken[n] || exists(n) })
			taken[name] = true
			p.Mapping[ref] = name
			p.Placements = append(p.Placements, Placement{Ref: ref, Source: src, Name: name})
		}
	}
	return p
}

// resolve finds the regular file ref points at below root. A percent-
// decoded form of ref is tried when the literal path does not exist.
func resolve(root, ref string) (string, bool) {
	if ref == "" || strings.Contains(ref, "://") || strings.HasPrefix(ref, "data:") {
		return "", false
	}
	candidates := []string{ref}
	if decoded, err := url.PathUnescape(ref); err == nil && decoded != ref {
		candidates = append(candidates, decoded)
	}
	for _, c := range candidates {
		c = strings.ReplaceAll(c, `\`, "/")
		if filepath.IsAbs(c) {
			continue
		}
		src := filepath.Join(root, filepath.FromSlash(c))
		if !within(root, src) {
			continue
		}
		if info, err := os.Stat(src); err == nil && info.Mode().IsRegular() {
			return src, true
		}
	}
	return "", false
}

// allocate returns base, or the first <stem>_<n><ext> for n = 1, 2, ...
// that is not taken.
func allocate(base string, taken func(string) bool) string {
	if !taken(base) {
		return base
	}
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, n, ext)
		if !taken(candidate) {
			return candidate
		}
	}
}

func within(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Relocate copies the images referenced by notes from sourceRoot into
// destDir. Filenames already present in destDir are treated as taken.
// Missing sources are counted, not reported as errors; copy failures
// return ErrCopyFailed.
func Relocate(ctx context.Context, sourceRoot, destDir string, notes []types.Note) (*Relocation, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, types.NewStageError(types.ErrCopyFailed, "creating attachments folder", err)
	}

	p := plan(sourceRoot, notes, func(name string) bool {
		_, err := os.Lstat(filepath.Join(destDir, name))
		return err == nil
	})

	rel := &Relocation{Dir: destDir, Mapping: p.Mapping, Missing: p.Missing}
	for _, pl := range p.Placements {
		if err := ctx.Err(); err != nil {
			return nil, types.NewStageError(types.ErrCopyFailed, "cancelled", err)
		}
		if err := copyFile(pl.Source, filepath.Join(destDir, pl.Name)); err != nil {
			return nil, types.NewStageError(types.ErrCopyFailed, pl.Ref, err)
		}
		rel.Copied++
	}

	slog.Debug("relocated attachments", "dir", destDir, "copied", rel.Copied, "missing", rel.Missing)
	return rel, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening source: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("creating destination: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying: %w", err)
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return fmt.Errorf("syncing: %w", err)
	}
	return out.Close()
}

// Links returns a resolver that links images by their planned filename.
func (p *Plan) Links() render.LinkResolver {
	return render.MappedLinks(p.Mapping)
}
