package contact

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/aidea/website-api/internal/domain"
	"github.com/aidea/website-api/internal/pkg/logger"
)

const (
	DefaultStoreTimeout = 10 * time.Second
	DefaultMailTimeout  = 15 * time.Second
)

var errNoNotifier = errors.New("mail transport is not configured")

// Options tunes the submission flow.
type Options struct {
	StoreTimeout time.Duration
	MailTimeout  time.Duration

	// StrictValidation re-runs the form's email and phone validators on the
	// server. Off by default: the form is the only place the source checks
	// formats, and callers posting directly rely on presence-only checks.
	StrictValidation bool

	// ParallelNotifications sends the user and admin emails concurrently.
	ParallelNotifications bool

	// Now is the clock used for created_at. Defaults to time.Now.
	Now func() time.Time
}

// Delivery is the outcome of one email channel: sent, or failed with a reason.
type Delivery struct {
	Sent bool
	Err  error
}

func sent() Delivery             { return Delivery{Sent: true} }
func failed(err error) Delivery { return Delivery{Err: err} }

// Result describes an accepted submission. It is only returned when the
// row was stored, whatever happened to the emails.
type Result struct {
	Submission *domain.ContactSubmission
	UserEmail  Delivery
	AdminEmail Delivery
}

// Service implements the contact submission flow. It is safe for concurrent use.
type Service struct {
	repo     Repository
	notifier Notifier
	opts     Options
	log      *logger.Logger
}

// NewService creates a contact service. repo may be nil when the data store
// is not configured; every submission then fails with ErrNotConfigured.
func NewService(repo Repository, notifier Notifier, opts Options) *Service {
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = DefaultStoreTimeout
	}
	if opts.MailTimeout <= 0 {
		opts.MailTimeout = DefaultMailTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		repo:     repo,
		notifier: notifier,
		opts:     opts,
		log:      logger.With("component", "contact"),
	}
}

// Configured reports whether a data store is wired in.
func (s *Service) Configured() bool { return s.repo != nil }

// Validate runs the form's field validators and returns field → message
// for every failing field. An empty map means the request is acceptable.
func Validate(req domain.ContactRequest) map[string]string {
	req = req.Normalize()
	errs := map[string]string{}
	for _, f := range req.MissingFields() {
		errs[f] = "This field is required"
	}
	if req.Email != "" {
		if err := domain.ValidateEmail(req.Email); err != nil {
			errs["email"] = err.Error()
		}
	}
	if req.Phone != "" {
		code := req.CountryCode
		if code == "" {
			code = domain.DetectDialCode(req.Phone)
		}
		if err := domain.ValidatePhone(req.Phone, code); err != nil {
			errs["phone"] = err.Error()
		}
	}
	return errs
}

// Submit validates, stores and announces one contact request.
//
// A validation, configuration or store failure is returned as an error and
// no email is attempted. Email failures never fail the call; they are
// reported on the Result.
func (s *Service) Submit(ctx context.Context, req domain.ContactRequest) (*Result, error) {
	req = req.Normalize()

	if missing := req.MissingFields(); len(missing) > 0 {
		return nil, &MissingFieldsError{Fields: missing}
	}
	if s.opts.StrictValidation {
		if errs := Validate(req); len(errs) > 0 {
			return nil, &ValidationError{Fields: errs}
		}
	}

	if s.repo == nil {
		s.log.Error("contact submission rejected: data store not configured")
		return nil, ErrNotConfigured
	}

	sub := domain.NewSubmission(req, s.opts.Now())
	if err := s.persist(ctx, sub); err != nil {
		return nil, err
	}
	s.log.Info("contact submission stored", "id", sub.ID, "email", sub.Email)

	// The row is committed; the emails go out even if the caller hangs up.
	notifyCtx := context.WithoutCancel(ctx)
	res := &Result{Submission: sub}
	if s.opts.ParallelNotifications {
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			res.UserEmail = s.notifyUser(notifyCtx, sub)
		}()
		go func() {
			defer wg.Done()
			res.AdminEmail = s.notifyAdmin(notifyCtx, sub)
		}()
		wg.Wait()
	} else {
		res.UserEmail = s.notifyUser(notifyCtx, sub)
		res.AdminEmail = s.notifyAdmin(notifyCtx, sub)
	}
	return res, nil
}

func (s *Service) persist(ctx context.Context, sub *domain.ContactSubmission) error {
	storeCtx, cancel := context.WithTimeout(ctx, s.opts.StoreTimeout)
	defer cancel()

	id, err := s.repo.Insert(storeCtx, sub)
	if err != nil {
		se := AsStoreError(err)
		s.log.Error("contact submission insert failed",
			"kind", Kind(se), "code", se.Code, "error", se.Message)
		return se
	}
	sub.ID = id
	return nil
}

func (s *Service) notifyUser(ctx context.Context, sub *domain.ContactSubmission) Delivery {
	if s.notifier == nil {
		return failed(errNoNotifier)
	}
	mailCtx, cancel := context.WithTimeout(ctx, s.opts.MailTimeout)
	defer cancel()

	if err := s.notifier.SendConfirmation(mailCtx, sub); err != nil {
		s.log.Error("confirmation email failed", "id", sub.ID, "email", sub.Email, "error", err)
		return failed(err)
	}
	return sent()
}

func (s *Service) notifyAdmin(ctx context.Context, sub *domain.ContactSubmission) Delivery {
	if s.notifier == nil {
		return failed(errNoNotifier)
	}
	mailCtx, cancel := context.WithTimeout(ctx, s.opts.MailTimeout)
	defer cancel()

	if err := s.notifier.SendAdminNotification(mailCtx, sub); err != nil {
		s.log.Error("admin notification email failed", "id", sub.ID, "error", err)
		return failed(err)
	}
	return sent()
}
