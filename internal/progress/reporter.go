// Package progress provides feedback while documents are ingested.
package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Reporter provides progress feedback during document ingestion. One
// FileDone call per input document, then Finish with the corpus total.
type Reporter interface {
	Start(totalFiles int)
	FileDone(name string, chunks int)
	Finish(totalChunks int)
}

// NewReporter returns a TerminalReporter if running in an interactive terminal,
// or a CIReporter if the CI environment variable is set.
func NewReporter() Reporter {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return NewCIReporter(os.Stderr)
	}
	return &TerminalReporter{}
}

// TerminalReporter displays a progress bar in the terminal.
type TerminalReporter struct {
	bar  *progressbar.ProgressBar
	done int
}

func (r *TerminalReporter) Start(totalFiles int) {
	r.done = 0
	r.bar = progressbar.NewOptions(totalFiles,
		progressbar.OptionSetDescription("Chunking documents"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *TerminalReporter) FileDone(name string, chunks int) {
	r.done++
	if r.bar != nil {
		r.bar.Describe(fmt.Sprintf("%s (%d chunks)", name, chunks))
		_ = r.bar.Set(r.done)
	}
}

func (r *TerminalReporter) Finish(totalChunks int) {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
}

// CIReporter prints line-by-line progress suitable for CI logs.
type CIReporter struct {
	out   io.Writer
	total int
	done  int
}

func NewCIReporter(out io.Writer) *CIReporter {
	return &CIReporter{out: out}
}

func (r *CIReporter) Start(totalFiles int) {
	r.total = totalFiles
	r.done = 0
	fmt.Fprintf(r.out, "Chunking %d document(s)\n", totalFiles)
}

func (r *CIReporter) FileDone(name string, chunks int) {
	r.done++
	fmt.Fprintf(r.out, "[%d/%d] %s: %d chunk(s)\n", r.done, r.total, name, chunks)
}

func (r *CIReporter) Finish(totalChunks int) {
	fmt.Fprintf(r.out, "Done: %d chunk(s) ready for indexing\n", totalChunks)
}
