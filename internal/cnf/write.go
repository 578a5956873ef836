package cnf

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Augmentation describes the directives injected by Augment.
type Augmentation struct {
	// ProblemType is written as the "c t" directive.
	ProblemType ProblemType

	// ProjVars, if non-empty, is written as a single "c p show" line.
	ProjVars []int

	// LitWeights maps signed literals to weight strings, one "c p" line
	// each, in ascending literal order.
	LitWeights map[int]string
}

// Augment copies the instance at srcPath to dstPath, injecting the given
// directives immediately after the header line. Every other line of the
// source, clause lines in particular, is copied byte-for-byte.
func Augment(srcPath, dstPath string, aug Augmentation) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("augment: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("augment: %w", err)
	}
	defer dst.Close()

	w := bufio.NewWriter(dst)
	if err := augment(src, w, aug); err != nil {
		return fmt.Errorf("augment %s: %w", srcPath, err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("augment %s: %w", srcPath, err)
	}
	return dst.Close()
}

func augment(r io.Reader, w *bufio.Writer, aug Augmentation) error {
	br := bufio.NewReaderSize(r, scanInitialBuf)
	sawHeader := false
	for {
		line, err := br.ReadBytes('\n')
		if len(line) > 0 {
			if _, werr := w.Write(line); werr != nil {
				return werr
			}
			if !sawHeader && bytes.HasPrefix(bytes.TrimLeft(line, " \t"), []byte("p ")) {
				sawHeader = true
				if !bytes.HasSuffix(line, []byte("\n")) {
					w.WriteByte('\n')
				}
				if derr := writeDirectives(w, aug); derr != nil {
					return derr
				}
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
	}
	if !sawHeader {
		return &FormatError{Msg: "no 'p cnf' header found"}
	}
	return nil
}

func writeDirectives(w *bufio.Writer, aug Augmentation) error {
	if aug.ProblemType != TypeUnknown {
		if _, err := fmt.Fprintf(w, "c t %s\n", aug.ProblemType); err != nil {
			return err
		}
	}
	if len(aug.ProjVars) > 0 {
		vars := make([]string, len(aug.ProjVars))
		for i, v := range aug.ProjVars {
			vars[i] = strconv.Itoa(v)
		}
		if _, err := fmt.Fprintf(w, "c p show %s 0\n", strings.Join(vars, " ")); err != nil {
			return err
		}
	}
	lits := make([]int, 0, len(aug.LitWeights))
	for lit := range aug.LitWeights {
		lits = append(lits, lit)
	}
	sort.Ints(lits)
	for _, lit := range lits {
		if _, err := fmt.Fprintf(w, "c p %d %s 0\n", lit, aug.LitWeights[lit]); err != nil {
			return err
		}
	}
	return nil
}
