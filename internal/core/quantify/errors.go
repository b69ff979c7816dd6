package quantify

import (
	"errors"
	"fmt"
)

// ErrNotReady is returned when results are requested before Calculate
// has completed.
var ErrNotReady = errors.New("cpt not calculated: run Calculate before exporting results")

// DegenerateWeightError reports a parent whose normalization
// denominator is zero at one or more sample indices. It is never
// silently masked unless the run is configured to substitute zero
// weights.
type DegenerateWeightError struct {
	Parent string
}

func (e *DegenerateWeightError) Error() string {
	return fmt.Sprintf("normalization denominator is zero for parent [%s]", e.Parent)
}

// NoEvidenceError reports an aggregation attempted for a parent with no
// contributing links.
type NoEvidenceError struct {
	Parent string
}

func (e *NoEvidenceError) Error() string {
	return fmt.Sprintf("no causal links contribute evidence for parent [%s]", e.Parent)
}

// NoPredecessorsError reports a quantification target with no incoming
// causal links.
type NoPredecessorsError struct {
	Target string
}

func (e *NoPredecessorsError) Error() string {
	return fmt.Sprintf("target [%s] has no predecessors", e.Target)
}

// ParentLimitError reports a target whose parent count exceeds the
// configured limit. CPT size grows as 2^k in the number of parents, so
// runs above the limit are rejected up front rather than attempted.
type ParentLimitError struct {
	Target string
	Count  int
	Limit  int
}

func (e *ParentLimitError) Error() string {
	return fmt.Sprintf("target [%s] has %d parents, above the limit of %d (CPT size is 2^k-1)",
		e.Target, e.Count, e.Limit)
}
