// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/flomo2obsidian/pkg/types"
)

func day(notes ...types.Note) types.DailyDocument {
	return types.DailyDocument{Day: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), Notes: notes}
}

func TestRender(t *testing.T) {
	tests := []struct {
		name  string
		doc   types.DailyDocument
		links LinkResolver
		want  string
	}{
		{
			name: "two notes with image",
			doc: day(
				types.Note{Content: "Hello\nworld", Images: []string{"file/a.jpg"}},
				types.Note{Content: "Evening"},
			),
			want: "# Hello\n\nworld\n\n![](Attachments/a.jpg)\n\n---\n\n# Evening\n\n",
		},
		{
			name: "single note no body",
			doc:  day(types.Note{Content: "Next"}),
			want: "# Next\n\n",
		},
		{
			name: "multi-line body kept verbatim",
			doc:  day(types.Note{Content: "Title\nline one\nline two"}),
			want: "# Title\n\nline one\nline two\n\n",
		},
		{
			name: "duplicate images embedded twice",
			doc:  day(types.Note{Content: "Pics", Images: []string{"file/a.jpg", "file/a.jpg"}}),
			want: "# Pics\n\n![](Attachments/a.jpg)\n\n![](Attachments/a.jpg)\n\n",
		},
		{
			name:  "mapped links use relocated names",
			doc:   day(types.Note{Content: "Pics", Images: []string{"file/a.jpg", "other/a.jpg", "gone/b.png"}}),
			links: MappedLinks(types.AttachmentMapping{"file/a.jpg": "a.jpg", "other/a.jpg": "a_1.jpg"}),
			want:  "# Pics\n\n![](Attachments/a.jpg)\n\n![](Attachments/a_1.jpg)\n\n![](Attachments/b.png)\n\n",
		},
		{
			name: "names with spaces use angle brackets",
			doc:  day(types.Note{Content: "Pics", Images: []string{"file/my photo (1).jpg"}}),
			want: "# Pics\n\n![](<Attachments/my photo (1).jpg>)\n\n",
		},
		{
			name: "windows separators",
			doc:  day(types.Note{Content: "Pics", Images: []string{`file\c.gif`}}),
			want: "# Pics\n\n![](Attachments/c.gif)\n\n",
		},
		{
			name: "empty document",
			doc:  day(),
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Render(tt.doc, tt.links))
		})
	}
}

func TestRender_Deterministic(t *testing.T) {
	doc := day(
		types.Note{Content: "One\nbody", Images: []string{"file/x.png"}},
		types.Note{Content: "Two"},
		types.Note{Content: "Three", Images: []string{"file/y.png", "file/z.png"}},
	)
	first := Render(doc, BasenameLinks)
	for range 10 {
		assert.Equal(t, first, Render(doc, BasenameLinks))
	}
}

func TestParseOutline(t *testing.T) {
	doc := day(
		types.Note{Content: "Hello\nworld", Images: []string{"file/a.jpg"}},
		types.Note{Content: "Evening", Images: []string{"file/my photo.jpg"}},
		types.Note{Content: "Night"},
	)
	out := ParseOutline([]byte(Render(doc, nil)))

	assert.Equal(t, []string{"Hello", "Evening", "Night"}, out.Headings)
	assert.Equal(t, []string{"Attachments/a.jpg", "Attachments/my photo.jpg"}, out.Images)
	assert.Equal(t, 2, out.Breaks)
}

func TestBasename(t *testing.T) {
	assert.Equal(t, "a.jpg", Basename("file/2024/a.jpg"))
	assert.Equal(t, "a.jpg", Basename("a.jpg"))
	assert.Equal(t, "b.png", Basename(`dir\b.png`))
}
