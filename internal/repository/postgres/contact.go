package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/aidea/website-api/internal/domain"
	"github.com/aidea/website-api/internal/service/contact"
)

// Postgres SQLSTATE codes the contact flow distinguishes.
const (
	codeUndefinedTable  = "42P01"
	codeUniqueViolation = "23505"
)

// ContactRepo implements contact.Repository against PostgreSQL.
type ContactRepo struct{ db *sql.DB }

// NewContactRepo creates a Postgres-backed contact submission repository.
func NewContactRepo(db *sql.DB) *ContactRepo { return &ContactRepo{db: db} }

func (r *ContactRepo) Insert(ctx context.Context, s *domain.ContactSubmission) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO contact_submissions
			(name, email, phone, company, budget, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, s.Name, s.Email, s.Phone, nullString(s.Company), nullString(s.Budget), s.Message, s.CreatedAt).Scan(&id)
	if err != nil {
		return 0, classify(err)
	}
	return id, nil
}

// classify turns a driver error into a *contact.StoreError.
func classify(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return &contact.StoreError{Kind: contact.ErrStore, Message: err.Error(), Err: fmt.Errorf("insert contact submission: %w", err)}
	}
	se := &contact.StoreError{
		Kind:    contact.ErrStore,
		Code:    string(pqErr.Code),
		Message: pqErr.Message,
		Err:     pqErr,
	}
	switch pqErr.Code {
	case codeUndefinedTable:
		se.Kind = contact.ErrStoreNotProvisioned
	case codeUniqueViolation:
		se.Kind = contact.ErrDuplicate
	}
	return se
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
