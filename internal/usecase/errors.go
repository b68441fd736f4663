package usecase

import "errors"

var (
	// ErrTransport covers network failures, timeouts and non-success HTTP
	// statuses from the upstream API. Never retried; the run aborts and the
	// operator re-runs later.
	ErrTransport = errors.New("transport failure")
	// ErrFormat covers undecodable or contract-violating payloads. Signals
	// an upstream schema change; the run aborts with a diagnostic.
	ErrFormat = errors.New("unexpected upstream payload")
)
