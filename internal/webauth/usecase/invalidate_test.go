package usecase

import (
	"context"
	"testing"

	"github.com/shandysiswandi/webauth/internal/webauth/entity"
)

func TestUsecase_Invalidate(t *testing.T) {
	ctx := context.Background()

	seed := func(f *fixture) {
		_ = f.ip.Put(ctx, testUser, testIP)
		_ = f.phrase.Put(ctx, testUser, testSecret)
		_ = f.counter.Put(ctx, testUser, 9)
	}

	tests := []struct {
		name                            string
		scope                           entity.InvalidationScope
		wantIP, wantPhrase, wantCounter bool
		wantErr                         bool
	}{
		{name: "ip", scope: entity.ScopeIP, wantPhrase: true, wantCounter: true},
		{name: "phrase drops the counter too", scope: entity.ScopePhrase, wantIP: true},
		{name: "all", scope: entity.ScopeAll},
		{name: "unknown", scope: "session", wantIP: true, wantPhrase: true, wantCounter: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			f := newFixture(t, &fakeStore{noQuery: true})
			seed(f)

			// Act
			err := f.uc.Invalidate(ctx, testUser, tt.scope)

			// Assert
			if (err != nil) != tt.wantErr {
				t.Fatalf("Invalidate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if _, ok := mustGet[string](t, f.ip, testUser); ok != tt.wantIP {
				t.Fatalf("ip present = %v, want %v", ok, tt.wantIP)
			}
			if _, ok := mustGet[string](t, f.phrase, testUser); ok != tt.wantPhrase {
				t.Fatalf("phrase present = %v, want %v", ok, tt.wantPhrase)
			}
			if _, ok := mustGet[int64](t, f.counter, testUser); ok != tt.wantCounter {
				t.Fatalf("counter present = %v, want %v", ok, tt.wantCounter)
			}
		})
	}
}
