// Package mailer delivers the contact flow's transactional email.
//
// A Sender is one outbound transport (SMTP, SES, Mailgun, or a log-only
// stand-in for local development). The Notifier renders the confirmation
// and admin templates and hands the result to a Sender.
package mailer
