package api

import (
	"errors"
	"net/http"

	"github.com/aidea/website-api/internal/domain"
	"github.com/aidea/website-api/internal/pkg/httputil"
	"github.com/aidea/website-api/internal/pkg/logger"
	"github.com/aidea/website-api/internal/service/contact"
)

const (
	kindInvalidRequest = "invalid_request"

	msgSubmitted           = "Thank you! Your message has been received."
	msgInvalidRequest      = "Invalid request body"
	msgMissingFields       = "Missing required fields"
	msgInvalidFields       = "Please correct the highlighted fields"
	msgServerMisconfigured = "Server configuration error. Please contact the site administrator."
	msgStoreNotProvisioned = "Database table not found. Please run the database setup migration."
	msgDuplicate           = "A submission with this information already exists."
)

// EmailStatus reports the per-channel outcome of a stored submission.
type EmailStatus struct {
	UserEmail  bool `json:"userEmail"`
	AdminEmail bool `json:"adminEmail"`
}

// SubmitResponse is the success body of POST /api/contact.
type SubmitResponse struct {
	Success      bool        `json:"success"`
	Message      string      `json:"message"`
	SubmissionID int64       `json:"submissionId"`
	EmailStatus  EmailStatus `json:"emailStatus"`
}

// FailureResponse is the body of every failed contact request.
type FailureResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Error   string            `json:"error"`
	Code    string            `json:"code,omitempty"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// ValidateResponse is the body of POST /api/contact/validate.
type ValidateResponse struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors"`
}

// Handlers contains the HTTP handlers for the public website API.
type Handlers struct {
	contact       *contact.Service
	exposeDetails bool
	log           *logger.Logger
}

// NewHandlers creates the handler set. exposeDetails adds raw store errors
// to 5xx responses and should stay off in production.
func NewHandlers(svc *contact.Service, exposeDetails bool) *Handlers {
	return &Handlers{
		contact:       svc,
		exposeDetails: exposeDetails,
		log:           logger.With("component", "api"),
	}
}

// SubmitContact stores a contact request and sends the two emails.
//
//	POST /api/contact
func (h *Handlers) SubmitContact(w http.ResponseWriter, r *http.Request) {
	var req domain.ContactRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.respondFailure(w, http.StatusBadRequest, FailureResponse{
			Message: msgInvalidRequest,
			Error:   kindInvalidRequest,
			Details: err.Error(),
		})
		return
	}

	res, err := h.contact.Submit(r.Context(), req)
	if err != nil {
		h.respondSubmitError(w, err)
		return
	}

	httputil.OK(w, SubmitResponse{
		Success:      true,
		Message:      msgSubmitted,
		SubmissionID: res.Submission.ID,
		EmailStatus: EmailStatus{
			UserEmail:  res.UserEmail.Sent,
			AdminEmail: res.AdminEmail.Sent,
		},
	})
}

func (h *Handlers) respondSubmitError(w http.ResponseWriter, err error) {
	kind := contact.Kind(err)
	resp := FailureResponse{Error: kind}
	status := http.StatusInternalServerError

	switch kind {
	case contact.KindMissingFields:
		status = http.StatusBadRequest
		resp.Message = msgMissingFields
		var mf *contact.MissingFieldsError
		if errors.As(err, &mf) {
			resp.Fields = make(map[string]string, len(mf.Fields))
			for _, f := range mf.Fields {
				resp.Fields[f] = "This field is required"
			}
		}
	case contact.KindInvalidFields:
		status = http.StatusBadRequest
		resp.Message = msgInvalidFields
		var ve *contact.ValidationError
		if errors.As(err, &ve) {
			resp.Fields = ve.Fields
		}
	case contact.KindDuplicate:
		status = http.StatusBadRequest
		resp.Message = msgDuplicate
	case contact.KindServerMisconfigured:
		resp.Message = msgServerMisconfigured
	case contact.KindStoreNotProvisioned:
		resp.Message = msgStoreNotProvisioned
	default:
		resp.Message = safeErrorMessage(status, err)
	}

	var se *contact.StoreError
	if errors.As(err, &se) {
		resp.Code = se.Code
		resp.Details = se.Message
	}
	if status >= http.StatusInternalServerError {
		h.log.Error("contact submission failed", "kind", kind, "code", resp.Code, "error", err)
	}
	h.respondFailure(w, status, resp)
}

// respondFailure writes resp, dropping details from 5xx bodies unless
// the server was told to expose them.
func (h *Handlers) respondFailure(w http.ResponseWriter, status int, resp FailureResponse) {
	resp.Success = false
	if status >= http.StatusInternalServerError && !h.exposeDetails {
		resp.Details = ""
	}
	httputil.JSON(w, status, resp)
}

// ValidateContact runs the form validators without storing anything.
//
//	POST /api/contact/validate
func (h *Handlers) ValidateContact(w http.ResponseWriter, r *http.Request) {
	var req domain.ContactRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.respondFailure(w, http.StatusBadRequest, FailureResponse{
			Message: msgInvalidRequest,
			Error:   kindInvalidRequest,
			Details: err.Error(),
		})
		return
	}
	errs := contact.Validate(req)
	httputil.OK(w, ValidateResponse{Valid: len(errs) == 0, Errors: errs})
}

// ListCountries returns the phone dial codes, filtered by ?q= when given.
//
//	GET /api/countries
func (h *Handlers) ListCountries(w http.ResponseWriter, r *http.Request) {
	countries := domain.SearchCountries(r.URL.Query().Get("q"))
	httputil.OK(w, map[string]any{
		"countries": countries,
		"total":     len(countries),
	})
}
