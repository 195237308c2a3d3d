// Package notifier runs one report cycle: fetch the download count for the
// configured package, render the message, and post it to every configured
// destination.
//
// Delivery semantics
//
// Destinations are attempted in configuration order, paced by a rate
// limiter. A failed post does not stop the fan-out: every destination gets
// exactly one attempt, per-destination outcomes are recorded in the Report,
// and the joined failures come back as a single error. There are no
// retries; the host scheduler owns the next attempt.
package notifier
