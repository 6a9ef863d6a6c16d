package main

import (
	"fmt"
	"os"
	"time"
)

// TimingReport collects timing data for each pipeline phase. A struct
// keeps the phase list in one place instead of a long parameter chain.
type TimingReport struct {
	Program  time.Duration
	Resolve  time.Duration
	Validate time.Duration
	Lower    time.Duration
	Analyze  time.Duration
	Emit     time.Duration
	Total    time.Duration
}

// Print outputs the build timing breakdown to stderr.
func (t *TimingReport) Print() {
	fmt.Fprintf(os.Stderr, "\n--- timing ---\n")
	fmt.Fprintf(os.Stderr, "  program:    %s\n", t.Program.Round(time.Millisecond))
	fmt.Fprintf(os.Stderr, "  resolve:    %s\n", t.Resolve.Round(time.Millisecond))
	fmt.Fprintf(os.Stderr, "  validate:   %s\n", t.Validate.Round(time.Millisecond))
	fmt.Fprintf(os.Stderr, "  lower:      %s\n", t.Lower.Round(time.Millisecond))
	fmt.Fprintf(os.Stderr, "  analyze:    %s\n", t.Analyze.Round(time.Millisecond))
	fmt.Fprintf(os.Stderr, "  emit:       %s\n", t.Emit.Round(time.Millisecond))
	fmt.Fprintf(os.Stderr, "  total:      %s\n", t.Total.Round(time.Millisecond))
}
