// Package gen drives opaque instance-generator executables and augments
// their output with random literal weights, producing the instance corpus
// a campaign runs over.
package gen

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"countercheck/internal/config"
	"countercheck/internal/sandbox"
)

// Options controls one generation batch.
type Options struct {
	// NumIter is the number of instances produced per generator.
	NumIter int

	// Seed seeds the batch; instance i uses Seed+i.
	Seed int64

	// Projected and Weighted select the instance flavor and the output
	// subdirectory.
	Projected bool
	Weighted  bool

	// Timeout bounds a single generator call.
	Timeout time.Duration
}

// Extension returns the instance file extension for the flavor.
func (o Options) Extension() string {
	ext := "cnf"
	if o.Weighted {
		ext = "w" + ext
	}
	if o.Projected {
		ext = "p" + ext
	}
	return ext
}

// Generate runs every generator NumIter times and returns the paths of the
// produced instances. Instances land in a per-flavor subdirectory of
// instanceDir and follow the <generator>_<iii>_s<seed>.<ext> convention the
// rest of the harness keys on. A failed generator call aborts the batch.
func Generate(ctx context.Context, generators []config.Tool, instanceDir string, opts Options) ([]string, error) {
	ext := opts.Extension()
	dir := filepath.Join(instanceDir, ext)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("generate instances: %w", err)
	}

	total := opts.NumIter * len(generators)
	progressInterval := max(total/10, 1)

	var instances []string
	for i := 0; i < opts.NumIter; i++ {
		seed := opts.Seed + int64(i)
		for _, g := range generators {
			path := filepath.Join(dir, fmt.Sprintf("%s_%03d_s%d.%s", g.Name, i, seed, ext))
			if err := generateOne(ctx, g, path, seed, opts.Timeout); err != nil {
				return instances, err
			}
			instances = append(instances, path)
			if len(instances)%progressInterval == 0 {
				slog.Info("generation progress", "generated", len(instances), "total", total)
			}
		}
	}
	return instances, nil
}

// generateOne invokes a single generator call. The argument template
// supports {out_file} and {seed}; when it never references {out_file} the
// output path is appended positionally.
func generateOne(ctx context.Context, g config.Tool, outPath string, seed int64, timeout time.Duration) error {
	r := strings.NewReplacer(
		"{out_file}", outPath,
		"{seed}", strconv.FormatInt(seed, 10),
	)
	args := strings.Fields(r.Replace(g.Args))
	if !strings.Contains(g.Args, "{out_file}") {
		args = append(args, outPath)
	}

	res := sandbox.Run(ctx, g.Path, args, sandbox.Config{
		Dir:     filepath.Dir(g.Path),
		CPUTime: timeout,
	})
	if res.Err != nil {
		return fmt.Errorf("generator %s: %w", g.Name, res.Err)
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("generator %s exited with code %d: %s", g.Name, res.ExitCode, strings.TrimSpace(res.Output))
	}
	if _, err := os.Stat(outPath); err != nil {
		return fmt.Errorf("generator %s produced no output at %s", g.Name, outPath)
	}
	return nil
}

// WriteInstanceList saves the batch manifest, one instance path per line.
func WriteInstanceList(outDir, prefix string, instances []string) (string, error) {
	path := filepath.Join(outDir, prefix+"_generated_instances.txt")
	content := strings.Join(instances, "\n")
	if len(instances) > 0 {
		content += "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write instance list: %w", err)
	}
	return path, nil
}
