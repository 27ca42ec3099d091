// Package registration validates course registrations and forwards them to the
// academy's collection endpoint.
//
// Submission is optimistic: the endpoint is called once and any response that
// arrives is treated as acceptance. Only a transport failure (no response at
// all) is reported to the caller as a *SubmissionError. There is no retry and
// no idempotency key, so a resubmission after an error may create a duplicate
// entry upstream.
package registration
