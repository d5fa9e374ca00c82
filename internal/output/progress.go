package output

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/progress"
)

// Progress draws a single-line progress bar on a terminal. Off a terminal
// it draws nothing.
type Progress struct {
	w     io.Writer
	bar   progress.Model
	label string
	live  bool
	drawn bool
}

// NewProgress returns a progress bar writing to w. The bar is drawn only
// when isTTY is true.
func NewProgress(w io.Writer, label string, isTTY bool) *Progress {
	return &Progress{
		w:     w,
		bar:   progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		label: label,
		live:  isTTY,
	}
}

// Update redraws the bar for current of total. It matches
// convert.ProgressFunc.
func (p *Progress) Update(current, total int) {
	if !p.live || total <= 0 {
		return
	}
	pct := float64(current) / float64(total)
	mustWrite(fmt.Fprintf(p.w, "\r%s %s %d/%d", p.label, p.bar.ViewAs(pct), current, total))
	p.drawn = true
}

// Done ends the progress line.
func (p *Progress) Done() {
	if p.drawn {
		mustWrite(fmt.Fprintln(p.w))
		p.drawn = false
	}
}
