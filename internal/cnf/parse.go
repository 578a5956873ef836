package cnf

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Scanner buffer bounds. Generated instances are small, but show lines on
// real competition benchmarks can run long.
const (
	scanInitialBuf = 64 * 1024
	scanMaxBuf     = 4 * 1024 * 1024
)

// ParseFile parses one extended-DIMACS file into an Instance.
// A missing or malformed "p" header is a FormatError.
func ParseFile(path string) (*Instance, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open instance: %w", err)
	}
	defer f.Close()

	in, err := Parse(f, path)
	if err != nil {
		return nil, err
	}
	return in, nil
}

// Parse parses extended-DIMACS text from r. The path is used only for
// error messages and the Instance's Path field.
func Parse(r io.Reader, path string) (*Instance, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, scanInitialBuf), scanMaxBuf)

	in := &Instance{
		Path:       path,
		ProjVars:   make(map[int]bool),
		LitWeights: make(map[int]string),
	}
	declared := TypeUnknown
	lineNo := 0

	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())

		switch {
		case strings.HasPrefix(line, "p "):
			if err := parseHeader(in, line, path, lineNo); err != nil {
				return nil, err
			}

		case strings.HasPrefix(line, "c t "):
			fields := strings.Fields(line)
			if len(fields) != 3 {
				return nil, &FormatError{Path: path, Line: lineNo, Msg: fmt.Sprintf("malformed type directive %q", line)}
			}
			declared = ProblemType(fields[2])
			if !declared.Valid() {
				return nil, &FormatError{Path: path, Line: lineNo, Msg: fmt.Sprintf("invalid problem type %q", fields[2])}
			}

		// "c p show" must be tested before the generic "c p" weight form.
		case strings.HasPrefix(line, "c p show "):
			if err := parseShow(in, line, path, lineNo); err != nil {
				return nil, err
			}

		case strings.HasPrefix(line, "c p "):
			if err := parseWeight(in, line, path, lineNo); err != nil {
				return nil, err
			}
		}
		// Clause lines and other comments are irrelevant here; counters
		// consume them, the harness only needs the header and directives.
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if in.NumVars == 0 {
		return nil, &FormatError{Path: path, Msg: "no 'p cnf' header found"}
	}
	if err := validateRanges(in, path); err != nil {
		return nil, err
	}

	recomputed := RecomputeType(declared, in.NumVars, in.ProjVars, in.LitWeights)
	if declared != TypeUnknown && recomputed != declared {
		slog.Warn("changing declared problem type to match projection/weights",
			"instance", path, "declared", string(declared), "recomputed", string(recomputed))
	}
	in.ProblemType = recomputed
	return in, nil
}

func parseHeader(in *Instance, line, path string, lineNo int) error {
	fields := strings.Fields(line)
	if len(fields) != 4 {
		return &FormatError{Path: path, Line: lineNo, Msg: fmt.Sprintf("expected 'p <type> <n_vars> <n_clauses>', got %q", line)}
	}
	if !headerTypes[fields[1]] {
		return &FormatError{Path: path, Line: lineNo, Msg: fmt.Sprintf("invalid instance type %q", fields[1])}
	}
	nVars, err := strconv.Atoi(fields[2])
	if err != nil || nVars <= 0 {
		return &FormatError{Path: path, Line: lineNo, Msg: fmt.Sprintf("invalid variable count %q", fields[2])}
	}
	nClauses, err := strconv.Atoi(fields[3])
	if err != nil || nClauses < 0 {
		return &FormatError{Path: path, Line: lineNo, Msg: fmt.Sprintf("invalid clause count %q", fields[3])}
	}
	in.NumVars = nVars
	in.NumClauses = nClauses
	return nil
}

func parseShow(in *Instance, line, path string, lineNo int) error {
	fields := strings.Fields(line)
	// c p show v1 ... vn 0
	if len(fields) < 4 || fields[len(fields)-1] != "0" {
		return &FormatError{Path: path, Line: lineNo, Msg: fmt.Sprintf("show directive missing terminating 0: %q", line)}
	}
	for _, tok := range fields[3 : len(fields)-1] {
		v, err := strconv.Atoi(tok)
		if err != nil || v <= 0 {
			return &FormatError{Path: path, Line: lineNo, Msg: fmt.Sprintf("invalid projected variable %q", tok)}
		}
		in.ProjVars[v] = true
	}
	return nil
}

func parseWeight(in *Instance, line, path string, lineNo int) error {
	fields := strings.Fields(line)
	// c p <lit> <weight> 0
	if len(fields) != 5 || fields[4] != "0" {
		return &FormatError{Path: path, Line: lineNo, Msg: fmt.Sprintf("malformed weight directive %q", line)}
	}
	lit, err := strconv.Atoi(fields[2])
	if err != nil || lit == 0 {
		return &FormatError{Path: path, Line: lineNo, Msg: fmt.Sprintf("invalid weighted literal %q", fields[2])}
	}
	in.LitWeights[lit] = fields[3]
	return nil
}

// validateRanges checks the data-model invariants once NumVars is known.
// Directives may legally appear before the header, so this runs after the
// whole file has been scanned.
func validateRanges(in *Instance, path string) error {
	for v := range in.ProjVars {
		if v > in.NumVars {
			return &FormatError{Path: path, Msg: fmt.Sprintf("projected variable %d out of range 1..%d", v, in.NumVars)}
		}
	}
	for lit := range in.LitWeights {
		abs := lit
		if abs < 0 {
			abs = -abs
		}
		if abs > in.NumVars {
			return &FormatError{Path: path, Msg: fmt.Sprintf("weighted literal %d out of range for %d variables", lit, in.NumVars)}
		}
	}
	return nil
}
