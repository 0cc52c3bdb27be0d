// Package clock provides a tiny time abstraction.
//
// Code that derives TOTP counters must depend on the Clocker interface instead
// of calling time.Now() directly, so tests can pin the counter window with a
// Fixed clock.
package clock
