// Copyright (c) 2026 fxview Team
// fxview - terminal currency converter
// This source code is licensed under the MIT license found in the LICENSE file.

// i18n-linter checks that every translation key used in the Go sources
// exists in the primary locale, and that every other locale carries the
// same key set. It exits non-zero when a key is undefined or missing from a
// secondary locale; orphaned keys only produce a warning.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	localesDir    = "internal/i18n/locales"
	primaryLocale = "en.yaml"
	projectRoot   = "."
)

// Location is where a key was referenced.
type Location struct {
	Filepath string
	Line     int
}

// Report is the outcome of one lint run.
type Report struct {
	Used      map[string][]Location
	Primary   map[string]struct{}
	Undefined []string            // used in code, absent from the primary locale
	Orphaned  []string            // defined in the primary locale, never used
	Missing   map[string][]string // per secondary locale file, keys it lacks
}

// Failed reports whether the run found errors (not just warnings).
func (r *Report) Failed() bool {
	if len(r.Undefined) > 0 {
		return true
	}
	for _, keys := range r.Missing {
		if len(keys) > 0 {
			return true
		}
	}
	return false
}

func main() {
	r, err := Lint(projectRoot, localesDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "i18n-linter: %v\n", err)
		os.Exit(1)
	}
	r.Print(os.Stdout)
	if r.Failed() {
		os.Exit(1)
	}
}

// Lint scans root for i18n.T calls and compares them with the locale files
// in locales.
func Lint(root, locales string) (*Report, error) {
	used, err := findUsedKeys(root)
	if err != nil {
		return nil, fmt.Errorf("scanning sources: %w", err)
	}
	primary, err := loadKeysFromLocale(filepath.Join(locales, primaryLocale))
	if err != nil {
		return nil, fmt.Errorf("loading primary locale %s: %w", primaryLocale, err)
	}
	files, err := filepath.Glob(filepath.Join(locales, "*.yaml"))
	if err != nil {
		return nil, err
	}

	r := &Report{Used: used, Primary: primary, Missing: map[string][]string{}}
	for key := range used {
		if _, ok := primary[key]; !ok {
			r.Undefined = append(r.Undefined, key)
		}
	}
	for key := range primary {
		if _, ok := used[key]; !ok {
			r.Orphaned = append(r.Orphaned, key)
		}
	}
	sort.Strings(r.Undefined)
	sort.Strings(r.Orphaned)

	for _, file := range files {
		if filepath.Base(file) == primaryLocale {
			continue
		}
		secondary, err := loadKeysFromLocale(file)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", file, err)
		}
		var missing []string
		for key := range primary {
			if _, ok := secondary[key]; !ok {
				missing = append(missing, key)
			}
		}
		sort.Strings(missing)
		r.Missing[filepath.Base(file)] = missing
	}
	return r, nil
}

// Print writes a human-readable summary of r to w.
func (r *Report) Print(w io.Writer) {
	fmt.Fprintf(w, "%d keys used in code, %d defined in %s\n", len(r.Used), len(r.Primary), primaryLocale)

	fmt.Fprintln(w, "--- Undefined keys (used in code, not in primary locale) ---")
	for _, key := range r.Undefined {
		loc := r.Used[key][0]
		fmt.Fprintf(w, "  - %s (%s:%d)\n", key, loc.Filepath, loc.Line)
	}
	if len(r.Undefined) == 0 {
		fmt.Fprintln(w, "  none")
	}

	fmt.Fprintln(w, "--- Orphaned keys (in primary locale, never used) ---")
	for _, key := range r.Orphaned {
		fmt.Fprintf(w, "  - %s\n", key)
	}
	if len(r.Orphaned) == 0 {
		fmt.Fprintln(w, "  none")
	}

	files := make([]string, 0, len(r.Missing))
	for f := range r.Missing {
		files = append(files, f)
	}
	sort.Strings(files)
	for _, f := range files {
		fmt.Fprintf(w, "--- Missing from %s ---\n", f)
		for _, key := range r.Missing[f] {
			fmt.Fprintf(w, "  - %s\n", key)
		}
		if len(r.Missing[f]) == 0 {
			fmt.Fprintln(w, "  none")
		}
	}
}

// keyRe matches i18n.T("key") as well as bare quoted dotted keys, which
// covers keys passed around in variables (help texts, picker titles).
var keyRe = regexp.MustCompile(`i18n\.T\("([^"]+)"|"((?:general|converter|picker|help|cli|config)\.[a-z0-9_.]+)"`)

func findUsedKeys(root string) (map[string][]Location, error) {
	keys := make(map[string][]Location)
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			switch info.Name() {
			case "tools", "_examples", ".git", "testdata":
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		for i, line := range strings.Split(string(content), "\n") {
			for _, m := range keyRe.FindAllStringSubmatch(line, -1) {
				key := m[1]
				if key == "" {
					key = m[2]
				}
				keys[key] = append(keys[key], Location{Filepath: path, Line: i + 1})
			}
		}
		return nil
	})
	return keys, err
}

// loadKeysFromLocale reads a YAML file and returns a flat set of its keys.
// Both flat ("a.b: x") and nested layouts are accepted.
func loadKeysFromLocale(path string) (map[string]struct{}, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var data map[string]any
	if err := yaml.Unmarshal(content, &data); err != nil {
		return nil, err
	}
	keys := make(map[string]struct{})
	flattenYAML("", data, keys)
	return keys, nil
}

func flattenYAML(prefix string, node any, keys map[string]struct{}) {
	switch v := node.(type) {
	case map[string]any:
		for k, val := range v {
			next := k
			if prefix != "" {
				next = prefix + "." + k
			}
			flattenYAML(next, val, keys)
		}
	default:
		if prefix != "" {
			keys[prefix] = struct{}{}
		}
	}
}
