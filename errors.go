package main

import "errors"

// Construction-time invariant violations are the only errors surfaced
// to callers; everything downstream of a committed object recovers
// locally with defaults.
var (
	ErrInvalidEndpoint = errors.New("connector endpoint does not resolve to a live node")
	ErrNoSuchConnector = errors.New("no such connector")
	ErrDuplicateID     = errors.New("id already in use")
	ErrSessionBound    = errors.New("session already bound to a canvas")
)
