package entity

import "strings"

// Decision is the only observable outcome of an authentication attempt.
type Decision int8

const (
	// Rejected means the attempt did not authenticate.
	Rejected Decision = iota
	// Accepted means the attempt authenticated.
	Accepted
)

// String returns the string representation of the decision.
func (d Decision) String() string {
	if d == Accepted {
		return "ACCEPTED"
	}
	return "REJECTED"
}

// Reason records which step of the flow produced a decision. It is used for
// logs and metrics only and is never returned to clients.
type Reason string

const (
	ReasonAuthDisabled Reason = "auth_disabled"
	ReasonUnresolved   Reason = "unresolved_user"
	ReasonIPBlocked    Reason = "ip_not_allowed"
	ReasonNotEnrolled  Reason = "not_enrolled"
	ReasonBadSecret    Reason = "unusable_secret"
	ReasonSameCounter  Reason = "same_counter"
	ReasonCodeValid    Reason = "code_valid"
	ReasonCodeInvalid  Reason = "code_invalid"
	ReasonInfraFailure Reason = "infrastructure_error"
)

// KeyType selects which column a public key is matched against.
type KeyType int8

const (
	KeyTypeUnknown KeyType = iota
	KeyTypePublicUUID
	KeyTypeAPIKey
)

// KeyTypeFromString parses the wire representation of a KeyType.
func KeyTypeFromString(s string) KeyType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "uuid", "public_uuid":
		return KeyTypePublicUUID
	case "api_key", "apikey":
		return KeyTypeAPIKey
	default:
		return KeyTypeUnknown
	}
}

// String returns the string representation of the key type.
func (k KeyType) String() string {
	switch k {
	case KeyTypePublicUUID:
		return "uuid"
	case KeyTypeAPIKey:
		return "api_key"
	default:
		return "unknown"
	}
}

// InvalidationScope names which cached view of a user changed in the store.
type InvalidationScope string

const (
	ScopeIP     InvalidationScope = "ip"
	ScopePhrase InvalidationScope = "phrase"
	ScopeAll    InvalidationScope = "all"
)
