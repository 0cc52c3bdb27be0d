package otp

import "errors"

// ErrNegativeCounter indicates a code was requested for a time before the epoch.
var ErrNegativeCounter = errors.New("otp: counter must not be negative")

// ErrEmptySecret indicates a code was requested without a shared secret.
var ErrEmptySecret = errors.New("otp: secret must not be empty")

// ErrUnknownEncoding indicates an unsupported secret encoding name.
var ErrUnknownEncoding = errors.New("otp: unknown secret encoding")
