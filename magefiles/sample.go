//go:build mage

package main

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	sampleDir    = "testdata"
	sampleExport = "testdata/sample-export.zip"
	sampleOutput = "testdata/sample-notes.zip"
)

// sampleHTML mimics the markup of a flomo HTML export: three days of memos,
// one image shared by two memos, one image missing from the archive and one
// memo without a timestamp.
const sampleHTML = `<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>flomo</title></head><body>
<div class="memos">
<div class="memo"><div class="time">2024-01-05 09:12:00</div><div class="content"><p>Morning pages</p><p>Slept well.</p><p>Coffee first.</p></div><div class="files"><img src="file/2024-01-05/cover.png"></div></div>
<div class="memo"><div class="time">2024-01-05 21:40:00</div><div class="content"><p>Reading list</p><p>Finish chapter 3</p></div><div class="files"><img src="file/2024-01-05/cover.png"><img src="file/2024-01-05/missing.jpg"></div></div>
<div class="memo"><div class="time">2024-01-06 07:05:00</div><div class="content"><p>Run 5k</p></div><div class="files"><img src="file/2024-01-06/cover.png"></div></div>
<div class="memo"><div class="time"></div><div class="content"><p>no timestamp</p></div></div>
<div class="memo"><div class="time">2024-01-08 12:00:00</div><div class="content"><p>Lunch with Ana</p></div></div>
</div></body></html>
`

// Sample writes a small flomo-style export to testdata/ for manual runs.
func Sample() error {
	if err := os.MkdirAll(sampleDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", sampleDir, err)
	}
	f, err := os.Create(sampleExport)
	if err != nil {
		return fmt.Errorf("creating %s: %w", sampleExport, err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	entries := []struct{ name, body string }{
		{"flomo-export/index.html", sampleHTML},
		{"flomo-export/file/2024-01-05/cover.png", "png-1"},
		{"flomo-export/file/2024-01-06/cover.png", "png-2"},
	}
	for _, e := range entries {
		w, err := zw.Create(e.name)
		if err != nil {
			return fmt.Errorf("adding %s: %w", e.name, err)
		}
		if _, err := w.Write([]byte(e.body)); err != nil {
			return fmt.Errorf("writing %s: %w", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", sampleExport, err)
	}
	fmt.Printf("Wrote %s\n", sampleExport)
	return nil
}

// Demo builds the CLI and converts the sample export.
func Demo() error {
	mg.Deps(Build, Sample)
	bin := filepath.Join(binDir, binName)
	if err := sh.RunV(bin, "inspect", sampleExport, "--no-history"); err != nil {
		return err
	}
	return sh.RunV(bin, "convert", sampleExport, "--output", sampleOutput, "--no-history")
}
