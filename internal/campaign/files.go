package campaign

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ProblematicPath is the location of the problematic-instances list for a
// given prefix.
func ProblematicPath(outDir, prefix string) string {
	return filepath.Join(outDir, prefix+"_problematic-instances.txt")
}

// WriteProblematic rewrites the problematic-instances list, one instance
// path per line. The full file is rewritten on every call so its contents
// always reflect exactly the completed instances.
func WriteProblematic(outDir, prefix string, instances []string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("write problematic instances: %w", err)
	}
	var b strings.Builder
	for _, inst := range instances {
		b.WriteString(inst)
		b.WriteByte('\n')
	}
	path := ProblematicPath(outDir, prefix)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write problematic instances: %w", err)
	}
	return nil
}

// Parameters is the reproducibility snapshot written next to the results.
type Parameters struct {
	Seed        int64    `json:"seed"`
	Counters    []string `json:"counters"`
	TimeoutSecs int      `json:"timeout_seconds"`
	MemoutMB    int      `json:"memout_mb"`
	Jobs        int      `json:"jobs"`
	Instances   int      `json:"instances"`
}

// WriteParameters persists the run parameters as a JSON artifact.
func WriteParameters(outDir, prefix string, p Parameters) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("write parameters: %w", err)
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "", fmt.Errorf("write parameters: %w", err)
	}
	path := filepath.Join(outDir, prefix+"_parameters.json")
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("write parameters: %w", err)
	}
	return path, nil
}
