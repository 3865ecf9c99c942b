package cli

import (
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/jamescalam/autodocs/internal/builder"
	"github.com/schollz/progressbar/v3"
)

// CLIProgressReporter implements progress reporting with progress bars.
type CLIProgressReporter struct {
	quiet   bool
	out     io.Writer
	mu      sync.Mutex
	fileBar *progressbar.ProgressBar
	pageBar *progressbar.ProgressBar
}

// NewCLIProgressReporter creates a new CLI progress reporter writing to out.
func NewCLIProgressReporter(quiet bool, out io.Writer) *CLIProgressReporter {
	return &CLIProgressReporter{quiet: quiet, out: out}
}

func (c *CLIProgressReporter) newBar(total int, description, unit string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(c.out),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString(unit),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(c.out)
		}),
	)
}

func (c *CLIProgressReporter) OnDiscoveryComplete(files int) {
	if c.quiet {
		return
	}
	log.Printf("Found %s Python files", formatNumber(files))
	if files > 0 {
		c.fileBar = c.newBar(files, "Extracting docstrings", "files/s")
	}
}

// OnFileExtracted is called from extraction workers concurrently.
func (c *CLIProgressReporter) OnFileExtracted(path string, err error) {
	if c.quiet {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fileBar == nil {
		return
	}
	c.fileBar.Add(1)
}

func (c *CLIProgressReporter) OnWritingPages(total int) {
	if c.quiet {
		return
	}
	if c.fileBar != nil {
		c.fileBar.Finish()
		c.fileBar = nil
	}
	if total > 0 {
		c.pageBar = c.newBar(-1, "Writing pages", "pages/s")
	}
}

func (c *CLIProgressReporter) OnPageWritten(path string) {
	if c.quiet || c.pageBar == nil {
		return
	}
	c.pageBar.Add(1)
}

func (c *CLIProgressReporter) OnComplete(result *builder.Result) {
	if c.quiet {
		return
	}
	if c.pageBar != nil {
		c.pageBar.Finish()
		c.pageBar = nil
	}

	stats := result.Stats
	fmt.Fprintln(c.out)
	fmt.Fprintf(c.out, "✓ Build complete: %s pages from %s modules in %.1fs\n",
		formatNumber(stats.PagesWritten),
		formatNumber(stats.ModulesExtracted),
		stats.ProcessingTimeSeconds)
	if stats.CacheHits > 0 {
		fmt.Fprintf(c.out, "  Cache hits:   %s\n", formatNumber(int(stats.CacheHits)))
	}
	if len(result.Fetched) > 0 {
		fmt.Fprintf(c.out, "  Assets:       %d downloaded\n", len(result.Fetched))
	}
	if result.Site != nil && !result.Site.OK() {
		fmt.Fprintf(c.out, "  Links:        %d broken, %d unreachable pages\n",
			len(result.Site.Broken), len(result.Site.Unreachable))
	}
	if stats.FilesFailed > 0 {
		fmt.Fprintf(c.out, "  Failed files: %d\n", stats.FilesFailed)
	}
}

// formatNumber formats integer with thousand separators.
// Examples: 1234 -> "1,234", 1234567 -> "1,234,567"
func formatNumber(n int) string {
	str := fmt.Sprintf("%d", n)
	if n < 1000 && n > -1000 {
		return str
	}

	sign := ""
	if str[0] == '-' {
		sign, str = "-", str[1:]
	}

	var result []byte
	for i := range len(str) {
		if i > 0 && (len(str)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, str[i])
	}
	return sign + string(result)
}
