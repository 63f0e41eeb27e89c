package progress

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Statistics accumulates the counts and throughput of one sync pass, read
// by CombinedProgressTracker.PrintSummary at the end of `ncsync sync`/`serve`.
type Statistics struct {
	StartTime        time.Time     `json:"start_time"`
	EndTime          time.Time     `json:"end_time"`
	Duration         time.Duration `json:"duration"`
	ProcessedFiles   int           `json:"processed_files"`
	TotalBytes       int64         `json:"total_bytes"`
	TransferredBytes int64         `json:"transferred_bytes"`

	Uploads   int `json:"uploads"`
	Downloads int `json:"downloads"`
	Deletes   int `json:"deletes"`
	Errors    int `json:"errors"`

	ThroughputBps float64 `json:"throughput_bps"`
	peakBps       float64

	currentOperation string
	operationStart   time.Time

	mu sync.RWMutex
}

// NewStatistics starts a fresh, running Statistics.
func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{StartTime: now, EndTime: now}
}

// StartOperation begins tracking a new operation (a single transfer phase).
func (s *Statistics) StartOperation(operation string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentOperation = operation
	s.operationStart = time.Now()
}

// EndOperation clears the in-flight operation.
func (s *Statistics) EndOperation() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentOperation = ""
	s.operationStart = time.Time{}
}

// RecordUpload records an upload of bytes.
func (s *Statistics) RecordUpload(bytes int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Uploads++
	s.ProcessedFiles++
	s.TransferredBytes += bytes
	s.updateThroughput()
}

// RecordDownload records a download of bytes.
func (s *Statistics) RecordDownload(bytes int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Downloads++
	s.ProcessedFiles++
	s.TransferredBytes += bytes
	s.updateThroughput()
}

// RecordDelete records a deletion (local or remote).
func (s *Statistics) RecordDelete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Deletes++
	s.ProcessedFiles++
	s.updateThroughput()
}

// RecordError records a failed action.
func (s *Statistics) RecordError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Errors++
}

// SetTotalBytes records the expected byte total for the in-flight transfer,
// used as the progress bar's denominator.
func (s *Statistics) SetTotalBytes(bytes int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.TotalBytes = bytes
}

// AddBytesTransferred sets the running byte count for the in-flight
// transfer (delta relative to the last call, mirroring Tracker.Update's
// running-total semantics).
func (s *Statistics) AddBytesTransferred(bytes int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.TransferredBytes += bytes
	s.updateThroughput()
}

// Finish stamps EndTime/Duration and the closing throughput figure. Called
// once, at the end of a pass, by PrintSummary.
func (s *Statistics) Finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.EndTime = time.Now()
	s.Duration = s.EndTime.Sub(s.StartTime)
	s.updateThroughput()
}

// updateThroughput recomputes bytes/sec and tracks the pass's peak.
func (s *Statistics) updateThroughput() {
	if s.StartTime.IsZero() || s.TransferredBytes == 0 {
		return
	}
	elapsed := time.Since(s.StartTime)
	if elapsed <= 0 {
		return
	}

	currentBps := float64(s.TransferredBytes) / elapsed.Seconds()
	s.ThroughputBps = currentBps
	if currentBps > s.peakBps {
		s.peakBps = currentBps
	}
}

// String renders a human-readable summary, printed by
// CombinedProgressTracker.PrintSummary.
func (s *Statistics) String() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var summary strings.Builder
	summary.WriteString("Sync Statistics:\n")
	summary.WriteString(fmt.Sprintf("  Duration: %s\n", s.Duration.Round(time.Second)))
	summary.WriteString(fmt.Sprintf("  Files processed: %d\n", s.ProcessedFiles))
	summary.WriteString(fmt.Sprintf("  Bytes transferred: %s\n", formatBytes(s.TransferredBytes)))

	if s.ThroughputBps > 0 {
		summary.WriteString(fmt.Sprintf("  Throughput: %s/s (peak: %s/s)\n",
			formatBytes(int64(s.ThroughputBps)), formatBytes(int64(s.peakBps))))
	}

	summary.WriteString(fmt.Sprintf("  Operations: %d uploads, %d downloads, %d deletes\n",
		s.Uploads, s.Downloads, s.Deletes))
	if s.Errors > 0 {
		summary.WriteString(fmt.Sprintf("  Errors: %d\n", s.Errors))
	}

	return summary.String()
}

// Copy returns a point-in-time snapshot safe to read without the lock.
func (s *Statistics) Copy() *Statistics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := *s
	return &c
}
