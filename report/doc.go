// Package report collects per-batch and per-record import failures for
// inline display and for serialization into a downloadable report.
//
// The Aggregator is unbounded by design: typical runs produce hundreds
// to low thousands of records, so failure lists stay small enough to
// keep in memory for the lifetime of a run.
package report
