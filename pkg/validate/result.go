// Package validate checks creation requests and LLM-authored scenarios
// against the rules a job must satisfy before (and after) the expensive
// provider calls. Validators return result values; they never panic and
// never terminate the process.
package validate

import "fmt"

// Violation is the first rule a validated document broke. Field names the
// offending wire field; Message is the client-visible explanation.
type Violation struct {
	Field   string
	Message string
}

// Error implements error so violations can travel through the pipeline's
// failure path unchanged.
func (v *Violation) Error() string {
	return v.Message
}

// violatef builds a Violation for field with a formatted message.
func violatef(field, format string, args ...any) *Violation {
	return &Violation{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Result is the outcome of one validation pass: the first violation found
// (nil when the document passed) plus any non-fatal warnings collected on
// the way there.
type Result struct {
	Violation *Violation
	Warnings  []string
}

// OK reports whether the document passed.
func (r Result) OK() bool {
	return r.Violation == nil
}

// Err returns the violation as an error, or nil when the document passed.
func (r Result) Err() error {
	if r.Violation == nil {
		return nil
	}
	return r.Violation
}

func (r *Result) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}
