// Package enrich drives post-import enrichment of produced document
// identifiers. A pausable, timer-chained loop dispatches one chunk at a
// time and records a resume point after each, so enrichment survives
// pauses and process restarts without reprocessing.
package enrich
