package admin

import "sync"

// Flags are the in-memory feature switches. Unknown keys in updates are
// ignored; the set resets on restart.
type Flags struct {
	mu     sync.RWMutex
	values map[string]bool
}

func NewFlags() *Flags {
	return &Flags{values: map[string]bool{
		"liveActivity": true,
		"demoData":     true,
		"autoRefresh":  true,
	}}
}

// Snapshot returns a copy of the current flag values.
func (f *Flags) Snapshot() map[string]bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make(map[string]bool, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out
}

// Apply sets known flags from updates and returns the keys that changed.
func (f *Flags) Apply(updates map[string]bool) []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	changed := []string{}
	for k, v := range updates {
		if _, known := f.values[k]; known {
			f.values[k] = v
			changed = append(changed, k)
		}
	}
	return changed
}

// Get returns one flag's value.
func (f *Flags) Get(key string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.values[key]
}
