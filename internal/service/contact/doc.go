// Package contact implements the contact-form submission flow:
// validate the request, persist one row, then try to email the submitter
// and the internal team.
//
// Persistence decides the outcome. Once the row is stored the submission
// succeeds, and each email channel only reports its own Delivery status.
//
// The service layer depends on the Repository and Notifier interfaces
// defined in repository.go. It never imports net/http or database/sql.
package contact
