package toolout

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
)

// ErrorKind categorizes a recognized tool failure line.
type ErrorKind string

const (
	// ErrAssertion is an assertion failure reported by the tool.
	ErrAssertion ErrorKind = "ASSERTION_FAILED"
	// ErrMemoryOut is the tool's own out-of-memory report.
	ErrMemoryOut ErrorKind = "MEMORY_OUT"
	// ErrGeneric is any other line the grammar classifies as an error.
	ErrGeneric ErrorKind = "TOOL_ERROR"
)

// ToolError is returned when a line of tool output matches one of the
// error rules. Parsing aborts at that line; the caller is expected to
// preserve the raw output as a log artifact.
type ToolError struct {
	Kind ErrorKind
	Line string
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("%s: %q", e.Kind, e.Line)
}

// AsToolError unwraps a ToolError from err, if present.
func AsToolError(err error) (*ToolError, bool) {
	var te *ToolError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}

// rule is one entry of a line grammar. match returns the submatches (or nil)
// and apply records them; apply returns an error to abort the scan.
type rule[T any] struct {
	name  string
	match func(line string) []string
	apply func(m []string, out *T) error
}

// scan runs an ordered rule list over every line of output. The first rule
// that matches a line consumes it.
func scan[T any](output string, rules []rule[T], out *T) error {
	sc := bufio.NewScanner(strings.NewReader(output))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		for _, r := range rules {
			m := r.match(line)
			if m == nil {
				continue
			}
			if err := r.apply(m, out); err != nil {
				return err
			}
			break
		}
	}
	return sc.Err()
}

// containsAll matches a line containing every one of the given substrings.
func containsAll(subs ...string) func(string) []string {
	return func(line string) []string {
		for _, s := range subs {
			if !strings.Contains(line, s) {
				return nil
			}
		}
		return []string{line}
	}
}

// failWith classifies the matching line as a tool error.
func failWith[T any](kind ErrorKind) func([]string, *T) error {
	return func(m []string, _ *T) error {
		return &ToolError{Kind: kind, Line: m[0]}
	}
}
