package manager

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"sync"
	"time"

	"veritor-hq/veritor/pkg/pcl/compiler"
)

// VersionEntry records one published compilation in the registry's
// append-only version log.
type VersionEntry struct {
	PolicyID      string
	PolicyVersion string
	CompilationID string
	PublishedAt   time.Time
}

// Registry is thread-safe in-memory storage for compiled policies.
// Publishing uses swap semantics: a new CompiledPolicy replaces its
// predecessor in one write, and readers holding the old pointer keep a
// consistent view until they finish.
type Registry struct {
	mu       sync.RWMutex
	policies map[string]*compiler.CompiledPolicy
	log      []VersionEntry
	version  string
	loadTime time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		policies: make(map[string]*compiler.CompiledPolicy),
		loadTime: time.Now(),
	}
}

// Publish registers a compiled policy, replacing any previously
// published version of the same policy id. The replaced version is
// retained only in the version log.
func (r *Registry) Publish(compiled *compiler.CompiledPolicy) error {
	if compiled == nil {
		return &RegistryError{Operation: "publish", Message: "compiled policy cannot be nil"}
	}
	if compiled.PolicyID == "" {
		return &RegistryError{Operation: "publish", Message: "policy id cannot be empty"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.policies[compiled.PolicyID] = compiled
	r.log = append(r.log, VersionEntry{
		PolicyID:      compiled.PolicyID,
		PolicyVersion: compiled.PolicyVersion,
		CompilationID: compiled.CompilationID,
		PublishedAt:   time.Now().UTC(),
	})
	r.updateVersion()
	return nil
}

// Unregister removes a policy from the registry by id.
func (r *Registry) Unregister(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.policies[id]; !ok {
		return &RegistryError{PolicyID: id, Operation: "unregister", Message: "policy not found"}
	}
	delete(r.policies, id)
	r.updateVersion()
	return nil
}

// Get retrieves a compiled policy by id.
func (r *Registry) Get(id string) (*compiler.CompiledPolicy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	compiled, ok := r.policies[id]
	return compiled, ok
}

// GetAll returns all compiled policies sorted by policy id.
func (r *Registry) GetAll() []*compiler.CompiledPolicy {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.policies))
	for id := range r.policies {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	policies := make([]*compiler.CompiledPolicy, 0, len(ids))
	for _, id := range ids {
		policies = append(policies, r.policies[id])
	}
	return policies
}

// PolicyIDs returns a sorted list of registered policy ids.
func (r *Registry) PolicyIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.policies))
	for id := range r.policies {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Count returns the number of registered policies.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.policies)
}

// Replace atomically swaps the entire policy set.
// Used for full hot reloads: the new set becomes visible in one write.
func (r *Registry) Replace(policies []*compiler.CompiledPolicy) error {
	for _, compiled := range policies {
		if compiled == nil {
			return &RegistryError{Operation: "replace", Message: "compiled policy cannot be nil"}
		}
		if compiled.PolicyID == "" {
			return &RegistryError{Operation: "replace", Message: "policy id cannot be empty"}
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	replacement := make(map[string]*compiler.CompiledPolicy, len(policies))
	now := time.Now().UTC()
	for _, compiled := range policies {
		replacement[compiled.PolicyID] = compiled
		r.log = append(r.log, VersionEntry{
			PolicyID:      compiled.PolicyID,
			PolicyVersion: compiled.PolicyVersion,
			CompilationID: compiled.CompilationID,
			PublishedAt:   now,
		})
	}

	r.policies = replacement
	r.loadTime = time.Now()
	r.updateVersion()
	return nil
}

// VersionLog returns a copy of the append-only publication history.
func (r *Registry) VersionLog() []VersionEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	log := make([]VersionEntry, len(r.log))
	copy(log, r.log)
	return log
}

// Version returns the registry's current version hash. It changes
// whenever a policy is published, replaced, or unregistered.
func (r *Registry) Version() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.version
}

// LoadTime returns when the policy set was last replaced.
func (r *Registry) LoadTime() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.loadTime
}

// updateVersion recomputes the registry version hash.
// Must be called with the write lock held.
func (r *Registry) updateVersion() {
	h := sha256.New()

	ids := make([]string, 0, len(r.policies))
	for id := range r.policies {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		compiled := r.policies[id]
		h.Write([]byte(compiled.PolicyID))
		h.Write([]byte(compiled.PolicyVersion))
		h.Write([]byte(compiled.CompilationID))
	}

	r.version = fmt.Sprintf("%x", h.Sum(nil))[:16]
}
