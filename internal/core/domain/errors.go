package domain

import "fmt"

// LoadError reports a batch file that could not be read or parsed.
// Line is 1-based and zero for whole-file failures.
type LoadError struct {
	Path   string
	Line   int
	Reason string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("load %s: line %d: %s", e.Path, e.Line, e.Reason)
	}
	return fmt.Sprintf("load %s: %s", e.Path, e.Reason)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// PersistenceError reports a rejected bulk write of processed results.
// The whole write failed; no partial commit happened.
type PersistenceError struct {
	Count int // results in the rejected write
	Err   error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("bulk persist of %d results: %v", e.Count, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// QuarantineWriteError reports a failed quarantine write. Never fatal to
// the run; the job records it as a warning and completes.
type QuarantineWriteError struct {
	RunID string
	Err   error
}

func (e *QuarantineWriteError) Error() string {
	return fmt.Sprintf("quarantine write for run %s: %v", e.RunID, e.Err)
}

func (e *QuarantineWriteError) Unwrap() error {
	return e.Err
}
