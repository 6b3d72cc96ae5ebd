package repository

import (
	"context"
	"fmt"

	"core/internal/model"

	"github.com/jmoiron/sqlx"
)

// LeadRepository writes lead and viewing records. Both are invoked as
// fire-and-forget side effects after the answer is composed.
type LeadRepository struct {
	db *sqlx.DB
}

// NewLeadRepository creates a new lead repository.
func NewLeadRepository(db *sqlx.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

// CreateLead inserts one captured lead.
func (r *LeadRepository) CreateLead(ctx context.Context, lead model.Lead) error {
	query := `
		INSERT INTO leads (session_id, name, email, phone, message, property_id)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))
	`
	_, err := r.db.ExecContext(ctx, query,
		lead.SessionID, lead.Name, lead.Email, lead.Phone, lead.Message, lead.PropertyID)
	if err != nil {
		return fmt.Errorf("failed to create lead: %w", err)
	}
	return nil
}

// CreateViewing inserts one viewing request.
func (r *LeadRepository) CreateViewing(ctx context.Context, viewing model.Viewing) error {
	query := `
		INSERT INTO viewings (session_id, property_id, requested_at, name, phone)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query,
		viewing.SessionID, viewing.PropertyID, viewing.When, viewing.Name, viewing.Phone)
	if err != nil {
		return fmt.Errorf("failed to create viewing: %w", err)
	}
	return nil
}
