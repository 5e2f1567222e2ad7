package contact

import (
	"context"

	"github.com/aidea/website-api/internal/domain"
)

// Repository defines the data access contract for contact submissions.
type Repository interface {
	// Insert stores the submission and returns the id the store assigned.
	// Failures are reported as *StoreError.
	Insert(ctx context.Context, s *domain.ContactSubmission) (int64, error)
}

// Notifier delivers the two transactional emails for a stored submission.
type Notifier interface {
	// SendConfirmation emails the submitter.
	SendConfirmation(ctx context.Context, s *domain.ContactSubmission) error

	// SendAdminNotification emails the internal recipients with every field.
	SendAdminNotification(ctx context.Context, s *domain.ContactSubmission) error
}
