// Package mock provides test doubles for the remote service interfaces.
//
// The mocks default to deterministic success behavior and allow custom
// behavior injection via function fields, so pipeline and loop tests can
// script failures, partial successes, and latency without a network.
package mock
