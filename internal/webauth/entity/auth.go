package entity

import "regexp"

// UserID identifies a principal in the user store.
type UserID int64

// UserIDUnresolved marks an identifier lookup that found no user.
const UserIDUnresolved UserID = -1

// Resolved reports whether id refers to an actual user.
func (id UserID) Resolved() bool {
	return id != UserIDUnresolved
}

// BlockedIP is cached in place of an address when the last full allow-list
// check rejected the client. It is never a valid IP literal.
const BlockedIP = "BLOCKED"

// WildcardIP is the stored allow-list address that admits any client.
const WildcardIP = "*"

// KeyLength is the length of public identifiers and API keys.
const KeyLength = 48

var reKey = regexp.MustCompile(`^[a-zA-Z0-9]{48}$`)

// IsKey reports whether key has the structure of a public identifier or API
// key. It does not check that the key belongs to anyone.
func IsKey(key string) bool {
	return reKey.MatchString(key)
}

// SanitizeKey returns key when it is well-formed and "" otherwise, so that
// garbage never reaches the store.
func SanitizeKey(key string) string {
	if IsKey(key) {
		return key
	}
	return ""
}
