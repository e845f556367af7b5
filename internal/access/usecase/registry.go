package usecase

import (
	"sync"

	accessDomain "github.com/allisson/scopedb/internal/access/domain"
)

// PolicyRegistry holds the registered access policies in memory. It is the
// authority for authorization decisions; persistence exists only so it can be
// rebuilt after a restart. Safe for concurrent use.
type PolicyRegistry struct {
	mu       sync.RWMutex
	policies map[string]*accessDomain.AccessPolicy
}

// NewPolicyRegistry creates an empty registry.
func NewPolicyRegistry() *PolicyRegistry {
	return &PolicyRegistry{
		policies: make(map[string]*accessDomain.AccessPolicy),
	}
}

// Register stores a policy, replacing any previous one for the same app.
func (r *PolicyRegistry) Register(policy *accessDomain.AccessPolicy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.policies[policy.AppID] = policy
}

// Get returns the policy for an app id.
func (r *PolicyRegistry) Get(appID string) (*accessDomain.AccessPolicy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	policy, ok := r.policies[appID]
	return policy, ok
}

// AppIDs returns the ids of all registered apps. Used to recognize foreign
// collection prefixes when resolving physical names.
func (r *PolicyRegistry) AppIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.policies))
	for id := range r.policies {
		ids = append(ids, id)
	}
	return ids
}

// Len returns the number of registered policies.
func (r *PolicyRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.policies)
}
