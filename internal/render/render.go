// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render turns daily documents into Obsidian markdown.
package render

import (
	"path"
	"strings"

	"github.com/pdiddy/flomo2obsidian/pkg/types"
)

// attachmentsDir is the folder image links point into. It matches the
// folder written by the archive package.
const attachmentsDir = "Attachments"

// LinkResolver returns the attachment filename an image reference is
// linked as.
type LinkResolver func(ref string) string

// BasenameLinks links every image by the last path element of its
// reference.
func BasenameLinks(ref string) string {
	return Basename(ref)
}

// MappedLinks links images by their relocated filename in mapping.
// References missing from mapping fall back to their basename.
func MappedLinks(mapping types.AttachmentMapping) LinkResolver {
	return func(ref string) string {
		if name, ok := mapping[ref]; ok {
			return name
		}
		return Basename(ref)
	}
}

// Basename returns the last element of a slash- or backslash-separated
// image reference.
func Basename(ref string) string {
	return path.Base(strings.ReplaceAll(ref, `\`, "/"))
}

// Render returns the markdown for doc. Each note becomes a level-one
// heading from its first line, followed by the remaining lines and one
// embed per image. Notes are separated by a thematic break. A nil links
// resolver uses BasenameLinks.
func Render(doc types.DailyDocument, links LinkResolver) string {
	if links == nil {
		links = BasenameLinks
	}

	var b strings.Builder
	for i, note := range doc.Notes {
		if i > 0 {
			b.WriteString("---\n\n")
		}
		b.WriteString("# ")
		b.WriteString(note.Title())
		b.WriteString("\n\n")

		if body := note.Body(); strings.TrimSpace(body) != "" {
			b.WriteString(body)
			b.WriteString("\n\n")
		}

		for _, ref := range note.Images {
			b.WriteString("![](")
			b.WriteString(destination(links(ref)))
			b.WriteString(")\n\n")
		}
	}
	return b.String()
}

// destination builds the link target for name, switching to the
// angle-bracket form when name would otherwise end the link early.
func destination(name string) string {
	dest := attachmentsDir + "/" + name
	if strings.ContainsAny(name, " \t()<>") {
		r := strings.NewReplacer("<", `\<`, ">", `\>`)
		return "<" + r.Replace(dest) + ">"
	}
	return dest
}
