package domain

import "errors"

// The requested record does not exist.
var ErrMissing = errors.New("missing")

// More records were found than the operation can accept.
var ErrTooMuch = errors.New("too much")

// A record with the same logical identity already exists.
var ErrConflict = errors.New("conflict")

// A persisted record names a service implementation nobody registered.
// This indicates store corruption or a missing backend integration.
var ErrBadSource = errors.New("unknown service source")

// The requested operation needs a deployer of a different type/flavor.
var ErrDeployerMismatch = errors.New("deployer type mismatch")
