// Package diagnostics defines the stable, machine-readable error codes the
// pipeline emits and the DiagnosticError type every pass reports through.
// Modeled on funxy's internal/diagnostics (referenced throughout
// internal/analyzer and cmd/lsp, e.g. diagnostics.NewError(diagnostics.ErrA003, ...)):
// a small closed set of ErrorCode constants plus one carrier struct rather
// than one Go error type per failure mode.
package diagnostics

import (
	"fmt"
	"strings"

	"github.com/cyrusattoun/covenant/internal/span"
)

// ErrorCode is one of the stable codes from spec.md §6.
type ErrorCode string

const (
	ErrUndefinedReference   ErrorCode = "E-SYMBOL-001"
	ErrDuplicateID          ErrorCode = "E-SYMBOL-002"
	ErrCircularImport       ErrorCode = "E-SYMBOL-003"
	ErrRelationTargetNotFnd ErrorCode = "E-REL-001"
	ErrMissingEffect        ErrorCode = "E-EFFECT-001"
	ErrTypeMismatch         ErrorCode = "E-TYPE-001"
	ErrUndefinedSymbol      ErrorCode = "E-TYPE-002"
	ErrInvariantViolation   ErrorCode = "E-INVARIANT-001"

	WarnDeadBinding ErrorCode = "W-DEAD-001"
	WarnExternUse   ErrorCode = "W-EXTERN-001"
)

// Severity classifies how a diagnostic affects pipeline advancement, per
// the three-tier model in spec.md §7.
type Severity int

const (
	SeverityHard Severity = iota
	SeveritySoft
	SeverityWarning
)

func (s Severity) String() string {
	switch s {
	case SeverityHard:
		return "error"
	case SeveritySoft:
		return "error(soft)"
	case SeverityWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// severityOf is the authoritative hard/soft/warning classification for each
// code, so callers don't have to hand-classify codes themselves.
var severityOf = map[ErrorCode]Severity{
	ErrUndefinedReference:   SeveritySoft,
	ErrDuplicateID:          SeverityHard,
	ErrCircularImport:       SeverityHard,
	ErrRelationTargetNotFnd: SeverityHard,
	ErrMissingEffect:        SeveritySoft,
	ErrTypeMismatch:         SeveritySoft,
	ErrUndefinedSymbol:      SeveritySoft,
	ErrInvariantViolation:   SeveritySoft,
	WarnDeadBinding:         SeverityWarning,
	WarnExternUse:           SeverityWarning,
}

// Severity returns the fixed severity tier for code.
func (code ErrorCode) Severity() Severity {
	if s, ok := severityOf[code]; ok {
		return s
	}
	return SeverityHard
}

// RelatedLocation annotates a diagnostic with a secondary span, e.g. the
// location of a prior conflicting declaration.
type RelatedLocation struct {
	Span    span.Span
	Message string
}

// CallChainEntry is one hop in the call chain that introduced a missing
// effect, reported by E-EFFECT-001 diagnostics.
type CallChainEntry struct {
	SymbolName string
	Span       span.Span
}

// DiagnosticError is the single carrier type for every pipeline error,
// warning, and soft diagnostic. It implements error.
type DiagnosticError struct {
	Code    ErrorCode
	Span    span.Span
	Message string

	// Subject is the name of the symbol the diagnostic is attached to
	// (the "referrer"). It is the secondary sort key for deterministic
	// output, per spec.md §5.
	Subject string

	Related       []RelatedLocation
	FixSuggestion string

	// CallChain is populated only for ErrMissingEffect: the path from the
	// declaring function down to the extern/import that introduced the
	// effect, per spec.md §4.4 "rich diagnostics".
	CallChain []CallChainEntry
}

func (e *DiagnosticError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Code, e.Message)
	if len(e.CallChain) > 0 {
		b.WriteString(" (via ")
		for i, c := range e.CallChain {
			if i > 0 {
				b.WriteString(" -> ")
			}
			b.WriteString(c.SymbolName)
		}
		b.WriteString(")")
	}
	if e.FixSuggestion != "" {
		fmt.Fprintf(&b, " [fix: %s]", e.FixSuggestion)
	}
	return b.String()
}

// IsHard reports whether this diagnostic blocks pipeline advancement.
func (e *DiagnosticError) IsHard() bool {
	return e.Code.Severity() == SeverityHard
}

// New constructs a DiagnosticError with no related locations or fix
// suggestion, the common case.
func New(code ErrorCode, sp span.Span, message string) *DiagnosticError {
	return &DiagnosticError{Code: code, Span: sp, Message: message}
}

// WithFix returns a copy of e carrying the given fix suggestion.
func (e *DiagnosticError) WithFix(suggestion string) *DiagnosticError {
	cp := *e
	cp.FixSuggestion = suggestion
	return &cp
}

// WithRelated returns a copy of e with an additional related location.
func (e *DiagnosticError) WithRelated(loc RelatedLocation) *DiagnosticError {
	cp := *e
	cp.Related = append(append([]RelatedLocation{}, e.Related...), loc)
	return &cp
}

// WithSubject returns a copy of e attributed to the given referring symbol.
func (e *DiagnosticError) WithSubject(name string) *DiagnosticError {
	cp := *e
	cp.Subject = name
	return &cp
}

// WithCallChain returns a copy of e carrying the given effect call chain.
func (e *DiagnosticError) WithCallChain(chain []CallChainEntry) *DiagnosticError {
	cp := *e
	cp.CallChain = chain
	return &cp
}

// HasHardError reports whether any diagnostic in errs blocks advancement.
func HasHardError(errs []*DiagnosticError) bool {
	for _, e := range errs {
		if e.IsHard() {
			return true
		}
	}
	return false
}

// SortBySpan orders diagnostics by (span.Start, subject, code) for
// deterministic, byte-stable output across runs, independent of the order
// passes happened to discover them in (spec.md §5: "ordering only affects
// diagnostic order, which is sorted ... before emission").
func SortBySpan(errs []*DiagnosticError) []*DiagnosticError {
	sorted := append([]*DiagnosticError{}, errs...)
	for i := 1; i < len(sorted); i++ {
		j := i
		for j > 0 && less(sorted[j], sorted[j-1]) {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
			j--
		}
	}
	return sorted
}

func less(a, b *DiagnosticError) bool {
	if a.Span.Start != b.Span.Start {
		return a.Span.Start < b.Span.Start
	}
	if a.Subject != b.Subject {
		return a.Subject < b.Subject
	}
	return a.Code < b.Code
}
