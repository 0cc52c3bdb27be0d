package validator

import (
	"errors"
	"testing"
)

type otpInput struct {
	Code string `validate:"required,otpcode"`
}

func TestV10Validator_OTPCode(t *testing.T) {
	v, err := NewV10Validator()
	if err != nil {
		t.Fatalf("NewV10Validator() error = %v", err)
	}

	tests := []struct {
		name    string
		code    string
		wantErr bool
	}{
		{name: "six digits", code: "287082"},
		{name: "eight digits", code: "94287082"},
		{name: "five digits", code: "28708", wantErr: true},
		{name: "nine digits", code: "942870821", wantErr: true},
		{name: "letters", code: "28708a", wantErr: true},
		{name: "unicode digits", code: "２８７０８２", wantErr: true},
		{name: "empty", code: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			err := v.Validate(otpInput{Code: tt.code})

			// Assert
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				return
			}

			var verr V10ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() error type = %T, want V10ValidationError", err)
			}
			if _, ok := verr.Values()["code"]; !ok {
				t.Fatalf("Validate() fields = %v, want key code", verr.Values())
			}
		})
	}
}

func TestV10Validator_FieldNames(t *testing.T) {
	v, err := NewV10Validator()
	if err != nil {
		t.Fatalf("NewV10Validator() error = %v", err)
	}

	type input struct {
		KeyType string `json:"type,omitempty" validate:"required"`
		APIKey  string `validate:"required"`
	}

	err = v.Validate(input{})

	var verr V10ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Validate() error = %v, want V10ValidationError", err)
	}
	for _, key := range []string{"type", "api_key"} {
		if _, ok := verr.Values()[key]; !ok {
			t.Fatalf("Validate() fields = %v, want key %s", verr.Values(), key)
		}
	}
}
