package gen

import (
	"fmt"
	"strings"
)

// Kind tags every failure a caller can distinguish.
type Kind string

const (
	KindInvalidConfig      Kind = "invalid_config"
	KindBlockerOutOfBounds Kind = "blocker_out_of_bounds"
	KindThemePlacement     Kind = "theme_placement_failed"
	KindLayoutInfeasible   Kind = "layout_infeasible"
	KindFillUnsat          Kind = "fill_unsat"
	KindFillTimeout        Kind = "fill_timeout"
	KindInvariant          Kind = "invariant_violation"
	KindGenerationFailed   Kind = "generation_failed"
)

// AttemptFailure is one failed attempt in the retry trace.
type AttemptFailure struct {
	Attempt int    `json:"attempt"`
	Kind    Kind   `json:"kind"`
	Detail  string `json:"detail"`
}

// Error is the orchestrator's terminal failure: the kind of the fatal or
// final condition plus the per-attempt trace.
type Error struct {
	Kind   Kind
	Detail string
	Trace  []AttemptFailure
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "generation failed (%s)", e.Kind)
	if e.Detail != "" {
		fmt.Fprintf(&b, ": %s", e.Detail)
	}
	if len(e.Trace) > 0 {
		b.WriteString(" [")
		for i, f := range e.Trace {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "attempt %d: %s", f.Attempt, f.Kind)
		}
		b.WriteString("]")
	}
	return b.String()
}

func fatal(kind Kind, detail string, trace []AttemptFailure) *Error {
	return &Error{Kind: kind, Detail: detail, Trace: trace}
}
