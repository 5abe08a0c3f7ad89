package scanner

import (
	"fmt"
	"time"

	"imagedup/logging"
)

// NewProgressTracker initializes the progress tracker and starts its
// display and result-draining goroutines.
func NewProgressTracker(stats FileStats, resultsChan chan ProcessResult) *ProgressTracker {
	tracker := &ProgressTracker{
		ticker:     time.NewTicker(500 * time.Millisecond),
		done:       make(chan bool),
		finished:   make(chan bool),
		totalFiles: stats.totalFiles,
	}

	// Start progress display goroutine
	go tracker.displayProgress()

	// Start result processor goroutine
	go tracker.processResults(resultsChan)

	return tracker
}

// displayProgress shows the progress periodically
func (p *ProgressTracker) displayProgress() {
	for {
		select {
		case <-p.done:
			return
		case <-p.ticker.C:
			p.mu.Lock()
			if p.errors > 0 {
				fmt.Printf("\rProgress: %d/%d (Errors: %d)", p.processed, p.totalFiles, p.errors)
			} else {
				fmt.Printf("\rProgress: %d/%d", p.processed, p.totalFiles)
			}
			p.mu.Unlock()
		}
	}
}

// processResults updates the tracker state based on hashing results
func (p *ProgressTracker) processResults(resultsChan chan ProcessResult) {
	for result := range resultsChan {
		p.mu.Lock()
		p.processed++

		if !result.Success {
			p.errors++
			if result.Error != nil {
				logging.LogImageProcessed(result.Path, false, result.Error.Error())
			}
		} else {
			logging.LogImageProcessed(result.Path, true, "")
		}

		p.mu.Unlock()
	}
	p.finished <- true
}

// Stop ends the progress tracking. Call after the results channel has
// been closed so the final counts include every file.
func (p *ProgressTracker) Stop() {
	<-p.finished
	p.ticker.Stop()
	p.done <- true
}

// Processed returns how many files the tracker has accounted for
func (p *ProgressTracker) Processed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.processed
}

// Errors returns how many files failed hashing
func (p *ProgressTracker) Errors() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.errors
}
