package model

import "fmt"

// Error taxonomy. Propagation policy:
//   - ConfigError: fatal, fails before any processing starts
//   - IndexBuildError: fatal for one novel and every backstory referencing it
//   - JudgeCallError: recovered locally as a failure-flagged NEUTRAL judgment
//   - DataError: fatal for the single affected item only

// ConfigError indicates invalid configuration (bad chunk/overlap sizes etc).
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// IndexBuildError indicates a novel's semantic index could not be built.
type IndexBuildError struct {
	BookName string
	Err      error
}

func (e *IndexBuildError) Error() string {
	return fmt.Sprintf("index build failed for %q: %v", e.BookName, e.Err)
}

func (e *IndexBuildError) Unwrap() error { return e.Err }

// JudgeCallError indicates a single judge invocation failed after retries.
type JudgeCallError struct {
	ClaimID        string
	EvidenceUnitID string
	Err            error
}

func (e *JudgeCallError) Error() string {
	return fmt.Sprintf("judge call failed for claim %s / unit %s: %v", e.ClaimID, e.EvidenceUnitID, e.Err)
}

func (e *JudgeCallError) Unwrap() error { return e.Err }

// DataError indicates malformed input data (empty novel, non-finite feature).
type DataError struct {
	Item   string
	Reason string
}

func (e *DataError) Error() string {
	return fmt.Sprintf("invalid data: %s: %s", e.Item, e.Reason)
}
