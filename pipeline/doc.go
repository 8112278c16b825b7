// Package pipeline dispatches parsed records to the remote import
// service in bounded sequential batches. It owns the run's retry
// policy (linear backoff), the consecutive-failure circuit breaker,
// inter-batch pacing, the cooperative abort flag, and live progress
// publishing. Runs execute on a single-worker pool so counters have
// exactly one writer.
package pipeline
