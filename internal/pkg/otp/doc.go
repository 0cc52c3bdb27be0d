// Package otp implements time-based one-time password (TOTP) verification.
//
// A TOTP code is an HOTP code (RFC 4226) whose counter is derived from the
// wall clock (RFC 6238): counter = floor((now - epoch) / step). Everything in
// this package is pure: given the same inputs it always returns the same
// result and it never touches I/O or shared state, so callers can drive it
// with a fixed clock in tests.
package otp
