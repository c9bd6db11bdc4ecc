package alert

import (
	"context"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing and single-node deployments without a
// database. Production should use PostgresRepository.
type InMemoryRepository struct {
	mu    sync.RWMutex
	rules map[string]*Rule
}

// NewInMemoryRepository creates a new in-memory rule repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		rules: make(map[string]*Rule),
	}
}

// Get retrieves a rule by ID.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*Rule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rule, ok := r.rules[id]
	if !ok {
		return nil, ErrRuleNotFound
	}

	cpy := *rule
	return &cpy, nil
}

// GetByOwnerAndID retrieves a rule by owner ID and rule ID.
func (r *InMemoryRepository) GetByOwnerAndID(_ context.Context, ownerID, ruleID string) (*Rule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rule, ok := r.rules[ruleID]
	if !ok || rule.OwnerID != ownerID {
		return nil, ErrRuleNotFound
	}

	cpy := *rule
	return &cpy, nil
}

// ListByOwner retrieves all rules for an owner.
func (r *InMemoryRepository) ListByOwner(_ context.Context, ownerID string) ([]*Rule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var rules []*Rule
	for _, rule := range r.rules {
		if rule.OwnerID == ownerID {
			cpy := *rule
			rules = append(rules, &cpy)
		}
	}
	return rules, nil
}

// ListActive retrieves all active rules across owners.
func (r *InMemoryRepository) ListActive(_ context.Context) ([]*Rule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var rules []*Rule
	for _, rule := range r.rules {
		if rule.IsActive {
			cpy := *rule
			rules = append(rules, &cpy)
		}
	}
	return rules, nil
}

// Create creates a new rule.
func (r *InMemoryRepository) Create(_ context.Context, rule *Rule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cpy := *rule
	r.rules[rule.ID] = &cpy
	return nil
}

// Update updates an existing rule.
func (r *InMemoryRepository) Update(_ context.Context, rule *Rule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rules[rule.ID]; !ok {
		return ErrRuleNotFound
	}

	cpy := *rule
	r.rules[rule.ID] = &cpy
	return nil
}

// Delete deletes a rule by ID.
func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.rules, id)
	return nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
