package cli

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var instanceExts = map[string]bool{
	".cnf": true, ".wcnf": true, ".pcnf": true, ".pwcnf": true,
}

// collectInstances resolves the --instances argument: a directory is walked
// for instance files, a .txt file is read as a one-path-per-line manifest,
// and anything else is taken as a single instance.
func collectInstances(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("collect instances: %w", err)
	}
	if info.IsDir() {
		return walkInstances(path)
	}
	if strings.EqualFold(filepath.Ext(path), ".txt") {
		return readManifest(path)
	}
	return []string{path}, nil
}

func walkInstances(dir string) ([]string, error) {
	var instances []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && instanceExts[filepath.Ext(path)] {
			instances = append(instances, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("collect instances: %w", err)
	}
	sort.Strings(instances)
	return instances, nil
}

func readManifest(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("collect instances: %w", err)
	}
	defer f.Close()

	var instances []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" {
			instances = append(instances, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("collect instances: %w", err)
	}
	return instances, nil
}
