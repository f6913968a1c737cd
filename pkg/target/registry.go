package target

import (
	"sort"
	"strings"
	"sync"
)

// Target registry
var (
	targetsMu sync.RWMutex
	targets   = make(map[string]Target)
)

// Register registers a target in the global registry.
// Called by target implementations in their init() functions.
func Register(t Target) {
	targetsMu.Lock()
	defer targetsMu.Unlock()
	targets[strings.ToLower(t.Name())] = t
}

// Get returns a target by name.
func Get(name string) (Target, bool) {
	targetsMu.RLock()
	defer targetsMu.RUnlock()
	t, ok := targets[strings.ToLower(name)]
	return t, ok
}

// List returns all registered target names (sorted).
func List() []string {
	targetsMu.RLock()
	defer targetsMu.RUnlock()
	names := make([]string, 0, len(targets))
	for name := range targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
