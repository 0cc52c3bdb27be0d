package webauth

import (
	"errors"
	"testing"
	"time"

	"github.com/shandysiswandi/webauth/internal/pkg/config"
	"github.com/shandysiswandi/webauth/internal/pkg/otp"
)

func TestReadSettings(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		env     map[string]string
		wantOn  bool
		want    time.Duration
		wantErr error
	}{
		{
			name:   "enabled",
			yaml:   "webauth:\n  enabled: true\n  totp:\n    step_seconds: 60\n",
			wantOn: true,
			want:   time.Minute,
		},
		{
			name: "explicitly disabled",
			yaml: "webauth:\n  enabled: false\n",
			want: otp.DefaultStep,
		},
		{
			name:    "missing key fails instead of disabling",
			yaml:    "webauth:\n  totp:\n    step_seconds: 30\n",
			wantErr: ErrAuthModeUnset,
		},
		{
			name:    "misspelled key fails instead of disabling",
			yaml:    "webauth:\n  enable: true\n",
			wantErr: ErrAuthModeUnset,
		},
		{
			name:   "environment sets the key",
			yaml:   "webauth:\n  totp:\n    step_seconds: 30\n",
			env:    map[string]string{"WEBAUTH_ENABLED": "true"},
			wantOn: true,
			want:   30 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := config.NewViperFromBytes("yaml", []byte(tt.yaml))
			if err != nil {
				t.Fatalf("NewViperFromBytes() error = %v", err)
			}

			// Act
			got, err := readSettings(cfg)

			// Assert
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("readSettings() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if got.AuthEnabled != tt.wantOn || got.Step != tt.want {
				t.Fatalf("readSettings() = %+v, want enabled=%v step=%s", got, tt.wantOn, tt.want)
			}
		})
	}
}
