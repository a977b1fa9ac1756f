package errors

import (
	"errors"
	"fmt"
	"strings"
)

// IssueCode classifies a non-fatal validation finding.
type IssueCode string

const (
	// RankMismatch indicates a present value's rank differs from the schema.
	RankMismatch IssueCode = "rank-mismatch"
	// DatatypeMismatch indicates a present value's element type differs from the schema.
	DatatypeMismatch IssueCode = "datatype-mismatch"
	// RequiredMissing indicates a field named in a required list is absent.
	RequiredMissing IssueCode = "required-missing"
	// SchemaNotLoaded indicates validation was attempted without a composed schema.
	SchemaNotLoaded IssueCode = "schema-not-loaded"
)

// Issue describes one validation finding. Issues are collected, not raised,
// so one pass over a data object reports every defect at once.
type Issue struct {
	Code     IssueCode
	Field    string
	Message  string
	Expected string
	Actual   string
}

// Error formats the issue for display, including code and field context.
func (i *Issue) Error() string {
	if i == nil {
		return "issue <nil>"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("[%s] %s", i.Code, i.Message))
	if i.Field != "" {
		b.WriteString(fmt.Sprintf(" at field %s", i.Field))
	}
	if i.Expected != "" {
		b.WriteString(fmt.Sprintf(" (expected: %s)", i.Expected))
	}
	if i.Actual != "" {
		b.WriteString(fmt.Sprintf(" (actual: %s)", i.Actual))
	}
	return b.String()
}

// Report holds zero or more validation issues. An empty report means the
// data object satisfied the effective schema. A non-empty report is not
// failure by itself; callers decide severity.
type Report []Issue

// Error returns a compact summary of the report.
func (r Report) Error() string {
	switch len(r) {
	case 0:
		return "no validation issues"
	case 1:
		return r[0].Error()
	default:
		return fmt.Sprintf("%s (and %d more)", r[0].Error(), len(r)-1)
	}
}

// OK reports whether the report is empty.
func (r Report) OK() bool {
	return len(r) == 0
}

// ByField returns the issues recorded for one field.
func (r Report) ByField(name string) []Issue {
	var out []Issue
	for _, issue := range r {
		if issue.Field == name {
			out = append(out, issue)
		}
	}
	return out
}

// NewIssue builds an issue with a code, field, and message.
func NewIssue(code IssueCode, field, msg string) Issue {
	return Issue{Code: code, Field: field, Message: msg}
}

// NewIssuef formats a message and builds an issue.
func NewIssuef(code IssueCode, field, format string, args ...any) Issue {
	return NewIssue(code, field, fmt.Sprintf(format, args...))
}

// AsReport extracts a report from an error returned by validation helpers.
func AsReport(err error) (Report, bool) {
	if err == nil {
		return nil, false
	}
	var report Report
	if errors.As(err, &report) {
		return report, true
	}

	var reportPtr *Report
	if errors.As(err, &reportPtr) && reportPtr != nil {
		return *reportPtr, true
	}

	return nil, false
}
