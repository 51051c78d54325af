package router

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"context-spotlight/config"
	"context-spotlight/rules"
)

const rulesFileName = "actions.json"

// Router owns the active compiled rule set and its provenance. Matching takes
// a shared lock only for the scan; reloads parse and compile outside the
// exclusive section and swap the slice plus the timestamp atomically.
type Router struct {
	paths config.Paths

	mu         sync.RWMutex
	compiled   []rules.CompiledRule
	lastMod    time.Time
	sourcePath string

	// reloadMu serializes the whole resolve/parse/compile sequence so two
	// concurrent freshness checks cannot interleave their swaps.
	reloadMu sync.Mutex
}

// New builds a router over the layered rule-file locations and performs the
// initial load.
func New(paths config.Paths) *Router {
	r := &Router{
		paths:      paths,
		sourcePath: paths.WritablePath(rulesFileName),
	}
	r.reloadIfNeeded()
	return r
}

// Match returns every rule whose compiled pattern matches anywhere in text,
// sorted descending by priority with source order preserved on ties.
func (r *Router) Match(text string) []rules.Rule {
	r.reloadIfNeeded()

	r.mu.RLock()
	var matched []rules.Rule
	for _, c := range r.compiled {
		if c.Matcher != nil && c.Matcher.MatchString(text) {
			matched = append(matched, c.Rule)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Scope.Priority > matched[j].Scope.Priority
	})

	return matched
}

// ForceReload resets the recorded modification time so the next freshness
// check reloads unconditionally, then performs that check.
func (r *Router) ForceReload() {
	r.mu.Lock()
	r.lastMod = time.Time{}
	r.mu.Unlock()
	r.reloadIfNeeded()
}

// SourcePath returns the currently resolved persistence location. Callers
// that edit rules write back to this path.
func (r *Router) SourcePath() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sourcePath
}

// RuleCount reports the number of loaded rules, compiled or inert.
func (r *Router) RuleCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.compiled)
}

// Rules returns a copy of the loaded rule list in source order, including
// rules whose patterns failed to compile.
func (r *Router) Rules() []rules.Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]rules.Rule, 0, len(r.compiled))
	for _, c := range r.compiled {
		out = append(out, c.Rule)
	}
	return out
}

// Import merges incoming rules into the persisted set: any existing rule
// sharing an incoming id is removed, then the incoming rule is appended.
// The merged set is persisted and the router force-reloaded. Returns the
// number of rules imported.
func (r *Router) Import(incoming []rules.Rule) (int, error) {
	if len(incoming) == 0 {
		return 0, nil
	}

	path := r.SourcePath()
	existing := readRuleFile(path)

	for _, in := range incoming {
		kept := existing[:0]
		for _, e := range existing {
			if e.Meta.ID != in.Meta.ID {
				kept = append(kept, e)
			}
		}
		existing = append(kept, in)
	}

	data, err := json.MarshalIndent(existing, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("serialize rules: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("create rules dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return 0, fmt.Errorf("write rules: %w", err)
	}

	r.ForceReload()
	return len(incoming), nil
}

// reloadIfNeeded runs the freshness check: resolve the source path, reload
// when the file is newer than the recorded timestamp, and fall back to the
// built-in defaults only while no rules have ever been loaded. Failures of
// any kind leave the previously loaded set untouched.
func (r *Router) reloadIfNeeded() {
	r.reloadMu.Lock()
	defer r.reloadMu.Unlock()

	path, found := r.paths.Resolve(rulesFileName)

	r.mu.Lock()
	r.sourcePath = path
	last := r.lastMod
	empty := len(r.compiled) == 0
	r.mu.Unlock()

	if found {
		st, err := os.Stat(path)
		if err != nil {
			log.Printf("Router: cannot stat %s: %v", path, err)
		} else if st.ModTime().After(last) {
			content, err := os.ReadFile(path)
			if err != nil {
				log.Printf("Router: failed to read %s: %v", path, err)
				return
			}
			var loaded []rules.Rule
			if err := json.Unmarshal(content, &loaded); err != nil {
				log.Printf("Router: failed to parse %s: %v", path, err)
				return
			}
			compiled := rules.CompileAll(loaded)

			r.mu.Lock()
			r.compiled = compiled
			r.lastMod = st.ModTime()
			r.mu.Unlock()

			log.Printf("Router: loaded %d rules from %s", len(compiled), path)
			return
		}
		return
	}

	// No file anywhere. Load built-in defaults at most once per process
	// lifetime: once the in-memory set is non-empty this branch is dead.
	if !empty {
		return
	}
	defaults, err := rules.Defaults()
	if err != nil {
		log.Printf("Router: built-in defaults are invalid: %v", err)
		return
	}
	compiled := rules.CompileAll(defaults)

	r.mu.Lock()
	r.compiled = compiled
	r.mu.Unlock()

	log.Printf("Router: no %s found, loaded %d built-in rules", rulesFileName, len(compiled))
}

// readRuleFile loads the persisted rule list, tolerating a missing or broken
// file. Import merges on top of whatever is actually on disk.
func readRuleFile(path string) []rules.Rule {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var rs []rules.Rule
	if err := json.Unmarshal(content, &rs); err != nil {
		log.Printf("Router: ignoring unparsable rule file %s: %v", path, err)
		return nil
	}
	return rs
}
