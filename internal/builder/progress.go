package builder

// ProgressReporter provides callbacks for reporting build progress.
// Implementations can display progress bars, log messages, or remain silent.
type ProgressReporter interface {
	// OnDiscoveryComplete is called when file discovery finishes.
	OnDiscoveryComplete(files int)

	// OnFileExtracted is called after each file is parsed, successfully or not.
	OnFileExtracted(path string, err error)

	// OnWritingPages is called before pages are written.
	OnWritingPages(total int)

	// OnPageWritten is called after each page is written.
	OnPageWritten(path string)

	// OnComplete is called when the build finishes.
	OnComplete(result *Result)
}

// NoOpProgressReporter is a progress reporter that does nothing.
// Used when progress reporting is disabled (e.g., --quiet flag).
type NoOpProgressReporter struct{}

func (n *NoOpProgressReporter) OnDiscoveryComplete(files int)          {}
func (n *NoOpProgressReporter) OnFileExtracted(path string, err error) {}
func (n *NoOpProgressReporter) OnWritingPages(total int)               {}
func (n *NoOpProgressReporter) OnPageWritten(path string)              {}
func (n *NoOpProgressReporter) OnComplete(result *Result)              {}
