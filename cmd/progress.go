package cmd

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/jfmyers9/plexlint/internal/audit"
)

// albumProgress draws a progress bar over the albums of one section
type albumProgress struct {
	out   io.Writer
	title string
	bar   *progressbar.ProgressBar
}

func (p *albumProgress) Start(total int) {
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.out),
		progressbar.OptionSetDescription("Scanning "+p.title),
		progressbar.OptionShowCount(),
		progressbar.OptionSetItsString("albums"),
		progressbar.OptionShowIts(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionThrottle(100*time.Millisecond),
	)
}

func (p *albumProgress) Advance() {
	if p.bar != nil {
		_ = p.bar.Add(1)
	}
}

func (p *albumProgress) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

// progressFactory returns a per-section progress builder, or nil when out is
// not a terminal.
func progressFactory(out io.Writer) func(section string) audit.Progress {
	f, ok := out.(*os.File)
	if !ok || !(isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return nil
	}
	return func(section string) audit.Progress {
		return &albumProgress{out: out, title: section}
	}
}
