// Package notifier tells academy staff about new course registrations.
//
// Registrations are e-mailed through Resend when an API key is configured;
// otherwise the dry-run notifier writes the message it would have sent.
// Notification is best effort and runs only after the registration itself was
// submitted.
package notifier
