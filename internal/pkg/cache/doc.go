// Package cache provides small named key/value caches with a time-to-live.
//
// Every logical purpose gets its own instance (for example "ip-cache" or
// "totp-counter-cache"); eviction is owned entirely by the backend. Callers
// must treat every entry as advisory: a miss is never an error and entries
// may disappear at any time.
package cache
