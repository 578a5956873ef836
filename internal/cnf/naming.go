package cnf

import (
	"path/filepath"
	"regexp"
)

// Generated instances follow <generator>_<index>_s<seed>.<ext>, where ext is
// one of cnf, wcnf, pcnf, pwcnf. The generator name may contain hyphens.
var (
	generatorPat = regexp.MustCompile(`^(?P<generator>[\w-]+)_\d+_s\d+\.p?w?cnf$`)
	seedPat      = regexp.MustCompile(`^[\w-]+_\d+_s(?P<seed>\d+)\.\w+$`)
)

// GeneratorName derives the generator that produced an instance from its
// file name, or "unknown" when the name does not follow the convention.
func GeneratorName(path string) string {
	m := generatorPat.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return "unknown"
	}
	return m[1]
}

// SeedFromName extracts the generation seed encoded in an instance file
// name. The second result is false when the name has no seed component.
func SeedFromName(path string) (string, bool) {
	m := seedPat.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return "", false
	}
	return m[1], true
}
