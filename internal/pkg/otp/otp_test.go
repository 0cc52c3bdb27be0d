package otp

import (
	"errors"
	"testing"
	"time"

	"github.com/pquerna/otp"
)

const (
	// RFC 6238 ASCII seed.
	rfcSeed = "12345678901234567890"
	// base32 of rfcSeed.
	rfcSecret = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"
	// 48 random letters and digits, the shape of an enrolled phrase.
	phrase48 = "a1B2c3D4e5F6g7H8i9J0k1L2m3N4o5P6q7R8s9T0u1V2w3X4"
)

func TestComputeCounter(t *testing.T) {
	epoch := time.Unix(0, 0)

	tests := []struct {
		name string
		at   time.Time
		step time.Duration
		want int64
	}{
		{name: "AtEpoch", at: epoch, step: 30 * time.Second, want: 0},
		{name: "LastSecondOfFirstStep", at: time.Unix(29, 0), step: 30 * time.Second, want: 0},
		{name: "FirstSecondOfSecondStep", at: time.Unix(30, 0), step: 30 * time.Second, want: 1},
		{name: "RFCVector", at: time.Unix(1111111109, 0), step: 30 * time.Second, want: 0x23523EC},
		{name: "SubSecondIgnored", at: time.Unix(59, 999_000_000), step: 30 * time.Second, want: 1},
		{name: "ZeroStepUsesDefault", at: time.Unix(60, 0), step: 0, want: 2},
		{name: "CustomStep", at: time.Unix(600, 0), step: time.Minute, want: 10},
		{name: "BeforeEpochFloors", at: time.Unix(-1, 0), step: 30 * time.Second, want: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeCounter(tt.at, epoch, tt.step); got != tt.want {
				t.Fatalf("ComputeCounter() = %d, want %d", got, tt.want)
			}
		})
	}

	t.Run("ShiftedEpoch", func(t *testing.T) {
		shifted := time.Unix(1000, 0)
		if got := ComputeCounter(time.Unix(1090, 0), shifted, 30*time.Second); got != 3 {
			t.Fatalf("ComputeCounter() = %d, want 3", got)
		}
	})
}

func TestTOTP_CodeAt(t *testing.T) {
	tests := []struct {
		name   string
		digits otp.Digits
		unix   int64
		want   string
	}{
		{name: "RFC59Eight", digits: otp.DigitsEight, unix: 59, want: "94287082"},
		{name: "RFC1111111109Eight", digits: otp.DigitsEight, unix: 1111111109, want: "07081804"},
		{name: "RFC1234567890Eight", digits: otp.DigitsEight, unix: 1234567890, want: "89005924"},
		{name: "RFC2000000000Eight", digits: otp.DigitsEight, unix: 2000000000, want: "69279037"},
		{name: "RFC1111111111Six", digits: otp.DigitsSix, unix: 1111111111, want: "050471"},
		{name: "RFC20000000000Six", digits: otp.DigitsSix, unix: 20000000000, want: "353130"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			totp := NewTOTP(0, tt.digits, SecretBase32)
			counter := ComputeCounter(time.Unix(tt.unix, 0), time.Unix(0, 0), DefaultStep)

			got, err := totp.CodeAt(rfcSecret, counter)
			if err != nil {
				t.Fatalf("CodeAt() error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("CodeAt() = %q, want %q", got, tt.want)
			}
		})
	}

	t.Run("NegativeCounter", func(t *testing.T) {
		if _, err := NewTOTP(0, otp.DigitsSix, SecretBase32).CodeAt(rfcSecret, -1); err != ErrNegativeCounter {
			t.Fatalf("CodeAt() error = %v, want %v", err, ErrNegativeCounter)
		}
	})
}

func TestTOTP_Verify(t *testing.T) {
	epoch := time.Unix(0, 0)
	step := 30 * time.Second
	now := time.Unix(1_700_000_015, 0)

	codeAt := func(t *testing.T, o *TOTP, offset int64) string {
		t.Helper()

		code, err := o.CodeAt(rfcSecret, ComputeCounter(now, epoch, step)+offset)
		if err != nil {
			t.Fatalf("CodeAt() error = %v", err)
		}
		return code
	}

	t.Run("RoundTrip", func(t *testing.T) {
		// Arrange
		o := NewTOTP(0, otp.DigitsSix, SecretBase32)
		code := codeAt(t, o, 0)

		// Act
		ok := o.Verify(rfcSecret, code, now, epoch, step)

		// Assert
		if !ok {
			t.Fatalf("expected code for current counter to verify")
		}
	})

	t.Run("RoundTripAcrossStepsAndEpochs", func(t *testing.T) {
		o := NewTOTP(0, otp.DigitsEight, SecretBase32)
		for _, s := range []time.Duration{15 * time.Second, 30 * time.Second, time.Minute} {
			for _, e := range []time.Time{epoch, time.Unix(123_456, 0)} {
				code, err := o.CodeAt(rfcSecret, ComputeCounter(now, e, s))
				if err != nil {
					t.Fatalf("CodeAt() error = %v", err)
				}
				if !o.Verify(rfcSecret, code, now, e, s) {
					t.Fatalf("round trip failed for step=%s epoch=%d", s, e.Unix())
				}
			}
		}
	})

	t.Run("AdjacentCounterRejectedWithoutSkew", func(t *testing.T) {
		o := NewTOTP(0, otp.DigitsSix, SecretBase32)

		if o.Verify(rfcSecret, codeAt(t, o, -1), now, epoch, step) {
			t.Fatalf("previous counter must not verify with skew 0")
		}
		if o.Verify(rfcSecret, codeAt(t, o, 1), now, epoch, step) {
			t.Fatalf("next counter must not verify with skew 0")
		}
	})

	t.Run("AdjacentCounterAcceptedWithSkew", func(t *testing.T) {
		o := NewTOTP(1, otp.DigitsSix, SecretBase32)

		if !o.Verify(rfcSecret, codeAt(t, o, -1), now, epoch, step) {
			t.Fatalf("previous counter must verify with skew 1")
		}
		if !o.Verify(rfcSecret, codeAt(t, o, 1), now, epoch, step) {
			t.Fatalf("next counter must verify with skew 1")
		}
		if o.Verify(rfcSecret, codeAt(t, o, 2), now, epoch, step) {
			t.Fatalf("counter outside the window must not verify")
		}
	})

	t.Run("WrongCode", func(t *testing.T) {
		o := NewTOTP(1, otp.DigitsSix, SecretBase32)
		valid := map[string]struct{}{}
		for _, off := range []int64{-1, 0, 1} {
			valid[codeAt(t, o, off)] = struct{}{}
		}

		for _, code := range []string{"000000", "123456", "999999", "654321"} {
			if _, ok := valid[code]; ok {
				continue
			}
			if o.Verify(rfcSecret, code, now, epoch, step) {
				t.Fatalf("code %q must not verify", code)
			}
		}
	})

	t.Run("WrongLength", func(t *testing.T) {
		o := NewTOTP(0, otp.DigitsSix, SecretBase32)
		code := codeAt(t, o, 0)

		if o.Verify(rfcSecret, code[:5], now, epoch, step) {
			t.Fatalf("short code must not verify")
		}
		if o.Verify(rfcSecret, code+"0", now, epoch, step) {
			t.Fatalf("long code must not verify")
		}
	})

	t.Run("InvalidSecret", func(t *testing.T) {
		o := NewTOTP(0, otp.DigitsSix, SecretBase32)

		if o.Verify("not base32 !!", "123456", now, epoch, step) {
			t.Fatalf("invalid secret must not verify")
		}
	})

	t.Run("BeforeEpoch", func(t *testing.T) {
		o := NewTOTP(0, otp.DigitsSix, SecretBase32)

		if o.Verify(rfcSecret, "000000", time.Unix(10, 0), time.Unix(100, 0), step) {
			t.Fatalf("time before epoch must not verify")
		}
	})

	t.Run("Deterministic", func(t *testing.T) {
		o := NewTOTP(0, otp.DigitsSix, SecretBase32)
		code := codeAt(t, o, 0)

		for range 10 {
			if !o.Verify(rfcSecret, code, now, epoch, step) {
				t.Fatalf("verification must be deterministic")
			}
		}
	})
}

func TestNewTOTP_Digits(t *testing.T) {
	if got := NewTOTP(0, otp.Digits(7), SecretBase32).Digits(); got != 6 {
		t.Fatalf("Digits() = %d, want fallback 6", got)
	}
	if got := NewTOTP(0, otp.DigitsEight, SecretBase32).Digits(); got != 8 {
		t.Fatalf("Digits() = %d, want 8", got)
	}
}

func TestTOTP_RawSecret(t *testing.T) {
	epoch := time.Unix(0, 0)
	now := time.Unix(1_700_000_015, 0)

	t.Run("RFCVectorsFromSeed", func(t *testing.T) {
		raw := NewTOTP(0, otp.DigitsEight, SecretRaw)
		counter := ComputeCounter(time.Unix(59, 0), epoch, DefaultStep)

		got, err := raw.CodeAt(rfcSeed, counter)
		if err != nil {
			t.Fatalf("CodeAt() error = %v", err)
		}
		if got != "94287082" {
			t.Fatalf("CodeAt() = %q, want 94287082", got)
		}
	})

	t.Run("SameKeyAsBase32", func(t *testing.T) {
		raw := NewTOTP(0, otp.DigitsSix, SecretRaw)
		b32 := NewTOTP(0, otp.DigitsSix, SecretBase32)
		counter := ComputeCounter(now, epoch, DefaultStep)

		a, errA := raw.CodeAt(rfcSeed, counter)
		b, errB := b32.CodeAt(rfcSecret, counter)
		if errA != nil || errB != nil || a != b {
			t.Fatalf("raw = %q, %v; base32 = %q, %v", a, errA, b, errB)
		}
	})

	t.Run("AlphanumericPhraseRoundTrip", func(t *testing.T) {
		for _, secret := range []string{phrase48, "not base32 !!", "0189"} {
			o := NewTOTP(0, otp.DigitsSix, SecretRaw)
			if err := o.CheckSecret(secret); err != nil {
				t.Fatalf("CheckSecret(%q) error = %v", secret, err)
			}

			code, err := o.CodeAt(secret, ComputeCounter(now, epoch, DefaultStep))
			if err != nil {
				t.Fatalf("CodeAt(%q) error = %v", secret, err)
			}
			if !o.Verify(secret, code, now, epoch, DefaultStep) {
				t.Fatalf("round trip failed for %q", secret)
			}
		}
	})

	t.Run("Base32RejectsAlphanumericPhrase", func(t *testing.T) {
		if err := NewTOTP(0, otp.DigitsSix, SecretBase32).CheckSecret(phrase48); err == nil {
			t.Fatalf("CheckSecret() error = nil, want decoding error")
		}
	})

	t.Run("EmptySecret", func(t *testing.T) {
		if err := NewTOTP(0, otp.DigitsSix, SecretRaw).CheckSecret(""); !errors.Is(err, ErrEmptySecret) {
			t.Fatalf("CheckSecret() error = %v, want %v", err, ErrEmptySecret)
		}

		o := NewTOTP(0, otp.DigitsSix, SecretRaw)
		code, err := o.CodeAt("", ComputeCounter(now, epoch, DefaultStep))
		if err == nil && o.Verify("", code, now, epoch, DefaultStep) {
			t.Fatalf("empty secret must not verify")
		}
	})
}

func TestParseSecretEncoding(t *testing.T) {
	tests := []struct {
		in      string
		want    SecretEncoding
		wantErr bool
	}{
		{in: "", want: SecretRaw},
		{in: "raw", want: SecretRaw},
		{in: " BASE32 ", want: SecretBase32},
		{in: "hex", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseSecretEncoding(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Fatalf("ParseSecretEncoding(%q) = %q, %v; want %q, wantErr %v", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}
