package progress

import (
	"fmt"
	stdsync "sync"
)

// Tracker is the interface the executor reports byte/file progress through.
// Each phase (download/upload/delete) starts a transfer, updates it as bytes
// move, and finishes or errors it; Tracker has no notion of the classifier's
// actions, only of raw counts and bytes.
type Tracker interface {
	Start(total int64)
	Update(current int64)
	Finish()
	SetOperation(operation string)
	Error(err error)
}

// CombinedProgressTracker combines a terminal progress bar with running
// statistics. There is no resume/checkpoint tracking: whole-file transfers
// are retried from scratch on the next pass, never resumed mid-transfer.
type CombinedProgressTracker struct {
	progressBar *ProgressBar
	statistics  *Statistics

	mu      stdsync.RWMutex
	enabled bool
	verbose bool
}

// Config holds configuration for the progress tracker.
type Config struct {
	ProgressBarWidth int
	Verbose          bool
	ShowStatistics   bool
}

// DefaultConfig returns a default configuration.
func DefaultConfig() *Config {
	return &Config{
		ProgressBarWidth: 50,
		Verbose:          false,
		ShowStatistics:   true,
	}
}

// NewCombinedProgressTracker creates a new combined progress tracker.
func NewCombinedProgressTracker(config *Config) *CombinedProgressTracker {
	if config == nil {
		config = DefaultConfig()
	}

	pt := &CombinedProgressTracker{
		enabled:    true,
		verbose:    config.Verbose,
		statistics: NewStatistics(),
	}

	pt.progressBar = NewProgressBar(config.ProgressBarWidth)
	pt.progressBar.SetEnabled(config.ShowStatistics)

	return pt
}

// Start implements Tracker.
func (pt *CombinedProgressTracker) Start(total int64) {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	if !pt.enabled {
		return
	}
	pt.progressBar.Start(total)
	pt.statistics.SetTotalBytes(total)
}

// Update implements Tracker.
func (pt *CombinedProgressTracker) Update(current int64) {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	if !pt.enabled {
		return
	}
	pt.progressBar.Update(current)
	pt.statistics.AddBytesTransferred(current - pt.statistics.TransferredBytes)
}

// Finish implements Tracker.
func (pt *CombinedProgressTracker) Finish() {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	if !pt.enabled {
		return
	}
	pt.progressBar.Finish()
	pt.statistics.EndOperation()
}

// SetOperation implements Tracker.
func (pt *CombinedProgressTracker) SetOperation(operation string) {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	if !pt.enabled {
		return
	}
	pt.progressBar.SetOperation(operation)
	pt.statistics.StartOperation(operation)
}

// Error implements Tracker.
func (pt *CombinedProgressTracker) Error(err error) {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	if !pt.enabled {
		return
	}
	pt.progressBar.Error(err)
	pt.statistics.RecordError()
}

// RecordUpload/RecordDownload/RecordDelete let the executor classify each
// completed action (with its byte count) as it finishes within a phase,
// since Tracker itself is action-agnostic.
func (pt *CombinedProgressTracker) RecordUpload(bytes int64) {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	pt.statistics.RecordUpload(bytes)
}

func (pt *CombinedProgressTracker) RecordDownload(bytes int64) {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	pt.statistics.RecordDownload(bytes)
}

func (pt *CombinedProgressTracker) RecordDelete() {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	pt.statistics.RecordDelete()
}

// GetStatistics returns a copy of the current statistics.
func (pt *CombinedProgressTracker) GetStatistics() *Statistics {
	pt.mu.RLock()
	defer pt.mu.RUnlock()
	return pt.statistics.Copy()
}

// SetEnabled enables or disables the progress tracker.
func (pt *CombinedProgressTracker) SetEnabled(enabled bool) {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	pt.enabled = enabled
	pt.progressBar.SetEnabled(enabled)
}

// PrintSummary finalizes the statistics (stamping EndTime/Duration and the
// closing throughput figure) and prints a summary of the sync pass.
func (pt *CombinedProgressTracker) PrintSummary() {
	pt.mu.Lock()
	pt.statistics.Finish()
	summary := pt.statistics.Copy().String()
	pt.mu.Unlock()
	fmt.Print(summary)
}
