package alert

import "context"

// Repository defines the interface for alert rule persistence.
type Repository interface {
	// Get retrieves a rule by ID.
	Get(ctx context.Context, id string) (*Rule, error)

	// GetByOwnerAndID retrieves a rule by owner ID and rule ID.
	// Returns ErrRuleNotFound if the rule doesn't exist or doesn't belong
	// to the owner.
	GetByOwnerAndID(ctx context.Context, ownerID, ruleID string) (*Rule, error)

	// ListByOwner retrieves all rules for an owner.
	ListByOwner(ctx context.Context, ownerID string) ([]*Rule, error)

	// ListActive retrieves all active rules across owners.
	ListActive(ctx context.Context) ([]*Rule, error)

	// Create creates a new rule.
	Create(ctx context.Context, rule *Rule) error

	// Update updates an existing rule.
	Update(ctx context.Context, rule *Rule) error

	// Delete deletes a rule by ID.
	Delete(ctx context.Context, id string) error
}
