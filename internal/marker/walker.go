package marker

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Result records what happened to one target file during a sweep.
type Result struct {
	Path   string
	Action Action
}

// Walker selects target files in a single directory by filename suffix and
// applies marker operations to them. Enumeration is non-recursive and only
// considers regular files; targets are never created or deleted, only
// mutated in place.
type Walker struct {
	// Dir is the directory to enumerate
	Dir string

	// Suffixes are the filename endings that select a target, e.g. ".rs"
	Suffixes []string

	// Exclude lists base names that are never treated as targets,
	// typically the flag file
	Exclude []string
}

// NewWalker creates a Walker over dir for the given suffixes.
func NewWalker(dir string, suffixes []string) *Walker {
	return &Walker{Dir: dir, Suffixes: suffixes}
}

// Targets returns the sorted absolute paths of all matching files.
func (w *Walker) Targets() ([]string, error) {
	entries, err := os.ReadDir(w.Dir)
	if err != nil {
		return nil, err
	}

	var targets []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		name := entry.Name()
		if w.excluded(name) || !w.matches(name) {
			continue
		}
		targets = append(targets, filepath.Join(w.Dir, name))
	}

	sort.Strings(targets)
	return targets, nil
}

// ReconcileAll applies Reconcile with the given sentinel to every target and
// reports the per-file outcome. The first failure aborts the sweep; files
// already processed stay processed.
func (w *Walker) ReconcileAll(sentinel string) ([]Result, error) {
	targets, err := w.Targets()
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(targets))
	for _, path := range targets {
		action, err := Reconcile(path, sentinel)
		if err != nil {
			return results, err
		}
		results = append(results, Result{Path: path, Action: action})
	}
	return results, nil
}

// TouchAll applies Touch to every target and reports the per-file outcome.
func (w *Walker) TouchAll() ([]Result, error) {
	targets, err := w.Targets()
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(targets))
	for _, path := range targets {
		action, err := Touch(path)
		if err != nil {
			return results, err
		}
		results = append(results, Result{Path: path, Action: action})
	}
	return results, nil
}

func (w *Walker) matches(name string) bool {
	for _, suffix := range w.Suffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

func (w *Walker) excluded(name string) bool {
	for _, ex := range w.Exclude {
		if name == ex {
			return true
		}
	}
	return false
}
