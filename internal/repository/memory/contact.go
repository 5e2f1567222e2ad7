// Package memory provides an in-process contact repository for local
// development and tests.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/aidea/website-api/internal/domain"
	"github.com/aidea/website-api/internal/service/contact"
)

// ContactRepo keeps submissions in a slice. It is safe for concurrent use.
type ContactRepo struct {
	mu     sync.RWMutex
	rows   []domain.ContactSubmission
	nextID int64

	// RejectDuplicates makes Insert fail with contact.ErrDuplicate when a
	// row with the same email and message already exists.
	RejectDuplicates bool
}

// NewContactRepo creates an empty repository.
func NewContactRepo() *ContactRepo { return &ContactRepo{} }

func (r *ContactRepo) Insert(ctx context.Context, s *domain.ContactSubmission) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, &contact.StoreError{Kind: contact.ErrStore, Message: err.Error(), Err: err}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.RejectDuplicates {
		for _, row := range r.rows {
			if strings.EqualFold(row.Email, s.Email) && row.Message == s.Message {
				return 0, &contact.StoreError{Kind: contact.ErrDuplicate, Message: "submission with this email and message already exists"}
			}
		}
	}

	r.nextID++
	row := *s
	row.ID = r.nextID
	r.rows = append(r.rows, row)
	return row.ID, nil
}

// All returns a copy of every stored submission in insertion order.
func (r *ContactRepo) All() []domain.ContactSubmission {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.ContactSubmission, len(r.rows))
	copy(out, r.rows)
	return out
}
