package otp

import (
	"crypto/subtle"
	"encoding/base32"
	"fmt"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
)

// DefaultStep is the RFC 6238 recommended time step.
const DefaultStep = 30 * time.Second

// SecretEncoding says how a stored shared secret maps to HMAC key bytes.
type SecretEncoding string

const (
	// SecretRaw uses the bytes of the secret string as the key.
	SecretRaw SecretEncoding = "raw"
	// SecretBase32 decodes the secret as RFC 4648 base32, as authenticator
	// apps provisioned from an otpauth:// URI expect.
	SecretBase32 SecretEncoding = "base32"
)

// ParseSecretEncoding maps a config value to a SecretEncoding. Empty means
// SecretRaw.
func ParseSecretEncoding(s string) (SecretEncoding, error) {
	switch e := SecretEncoding(strings.ToLower(strings.TrimSpace(s))); e {
	case "", SecretRaw:
		return SecretRaw, nil
	case SecretBase32:
		return e, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownEncoding, s)
	}
}

// OTP defines the contract for TOTP verification.
type OTP interface {
	// Counter returns the time counter for at, relative to epoch.
	Counter(at, epoch time.Time, step time.Duration) int64
	// CheckSecret reports why secret cannot be used as a key, if it cannot.
	CheckSecret(secret string) error
	// CodeAt derives the code for secret at an explicit counter.
	CodeAt(secret string, counter int64) (string, error)
	// Verify reports whether code matches secret at the counter of at, or at
	// any counter inside the configured skew window.
	Verify(secret, code string, at, epoch time.Time, step time.Duration) bool
}

// TOTP implements OTP with HMAC-SHA1 codes.
type TOTP struct {
	skew     uint
	digits   otp.Digits
	encoding SecretEncoding
}

// NewTOTP constructs a TOTP verifier.
//
// If digits is not 6 or 8, it falls back to 6 digits. A skew of 0 checks
// exactly one counter; a skew of n also accepts the n counters on each side.
// Any encoding other than SecretBase32 is treated as SecretRaw.
func NewTOTP(skew uint, digits otp.Digits, encoding SecretEncoding) *TOTP {
	if digits != otp.DigitsSix && digits != otp.DigitsEight {
		digits = otp.DigitsSix
	}
	if encoding != SecretBase32 {
		encoding = SecretRaw
	}

	return &TOTP{
		skew:     skew,
		digits:   digits,
		encoding: encoding,
	}
}

// key returns secret in the base32 form hotp expects.
func (o *TOTP) key(secret string) string {
	if o.encoding == SecretBase32 {
		return secret
	}
	return base32.StdEncoding.EncodeToString([]byte(secret))
}

// CheckSecret returns ErrEmptySecret for "" and, with SecretBase32, the
// decoding error for a secret that is not base32.
func (o *TOTP) CheckSecret(secret string) error {
	if secret == "" {
		return ErrEmptySecret
	}
	_, err := o.CodeAt(secret, 0)
	return err
}

// Digits returns the code length this verifier expects.
func (o *TOTP) Digits() int {
	return o.digits.Length()
}

// Counter returns ComputeCounter(at, epoch, step).
func (o *TOTP) Counter(at, epoch time.Time, step time.Duration) int64 {
	return ComputeCounter(at, epoch, step)
}

// CodeAt derives the code for secret at an explicit counter.
func (o *TOTP) CodeAt(secret string, counter int64) (string, error) {
	if counter < 0 {
		return "", ErrNegativeCounter
	}

	return hotp.GenerateCodeCustom(o.key(secret), uint64(counter), hotp.ValidateOpts{
		Digits:    o.digits,
		Algorithm: otp.AlgorithmSHA1,
	})
}

// Verify reports whether code matches secret at the counter of at, or at any
// counter inside the configured skew window.
func (o *TOTP) Verify(secret, code string, at, epoch time.Time, step time.Duration) bool {
	if secret == "" || len(code) != o.digits.Length() {
		return false
	}

	counter := ComputeCounter(at, epoch, step)
	skew := int64(o.skew)

	for c := counter - skew; c <= counter+skew; c++ {
		if c < 0 {
			continue
		}

		expected, err := o.CodeAt(secret, c)
		if err != nil {
			// secret does not decode; no counter can match
			return false
		}

		if subtle.ConstantTimeCompare([]byte(expected), []byte(code)) == 1 {
			return true
		}
	}

	return false
}

// ComputeCounter returns floor((at - epoch) / step) using whole seconds.
//
// A non-positive step falls back to DefaultStep. Times before epoch yield a
// negative counter, which never verifies.
func ComputeCounter(at, epoch time.Time, step time.Duration) int64 {
	stepSec := int64(step / time.Second)
	if stepSec <= 0 {
		stepSec = int64(DefaultStep / time.Second)
	}

	elapsed := at.Unix() - epoch.Unix()

	counter := elapsed / stepSec
	if elapsed%stepSec != 0 && elapsed < 0 {
		counter--
	}

	return counter
}
