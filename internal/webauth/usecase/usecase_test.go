package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	pqotp "github.com/pquerna/otp"
	"github.com/shandysiswandi/webauth/internal/pkg/cache"
	"github.com/shandysiswandi/webauth/internal/pkg/clock"
	"github.com/shandysiswandi/webauth/internal/pkg/goerror"
	"github.com/shandysiswandi/webauth/internal/pkg/otp"
	"github.com/shandysiswandi/webauth/internal/pkg/validator"
	"github.com/shandysiswandi/webauth/internal/webauth/entity"
)

const (
	testSecret = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"
	testUser   = entity.UserID(42)
	testIP     = "10.0.0.7"
	testStep   = 30 * time.Second
	testKey    = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUV"
)

var (
	testEpoch = time.Unix(0, 0)
	testNow   = time.Unix(1_700_000_015, 0)
	errBoom   = errors.New("boom")
)

type fakeStore struct {
	t       *testing.T
	noQuery bool

	phrase    string
	phraseErr error
	// checkCtx makes GetTOTPPhrase fail with ctx.Err() like a real driver.
	checkCtx bool
	ipMatches int64
	ipErr     error
	ids       map[string]entity.UserID
	idErr     error

	ipCalls     atomic.Int64
	phraseCalls atomic.Int64
	idCalls     atomic.Int64
}

func (f *fakeStore) queried(what string) {
	if f.noQuery {
		f.t.Fatalf("store must not be queried, got %s", what)
	}
}

func (f *fakeStore) FindIDByPublicUUID(_ context.Context, uuid string) (entity.UserID, error) {
	f.queried("FindIDByPublicUUID")
	f.idCalls.Add(1)
	return f.lookup(uuid)
}

func (f *fakeStore) FindIDByAPIKey(_ context.Context, key string) (entity.UserID, error) {
	f.queried("FindIDByAPIKey")
	f.idCalls.Add(1)
	return f.lookup(key)
}

func (f *fakeStore) lookup(key string) (entity.UserID, error) {
	if f.idErr != nil {
		return entity.UserIDUnresolved, f.idErr
	}
	id, ok := f.ids[key]
	if !ok {
		return entity.UserIDUnresolved, goerror.ErrNotFound
	}
	return id, nil
}

func (f *fakeStore) GetTOTPPhrase(ctx context.Context, _ entity.UserID) (string, error) {
	f.queried("GetTOTPPhrase")
	f.phraseCalls.Add(1)
	if f.checkCtx && ctx.Err() != nil {
		return "", ctx.Err()
	}
	return f.phrase, f.phraseErr
}

func (f *fakeStore) CountIPMatches(_ context.Context, _ entity.UserID, _ string) (int64, error) {
	f.queried("CountIPMatches")
	f.ipCalls.Add(1)
	return f.ipMatches, f.ipErr
}

type failingCache[K comparable, V any] struct {
	err error
}

func (c failingCache[K, V]) Name() string { return "failing" }

func (c failingCache[K, V]) Get(context.Context, K) (V, bool, error) {
	var zero V
	return zero, false, c.err
}

func (c failingCache[K, V]) Put(context.Context, K, V) error { return c.err }

func (c failingCache[K, V]) Delete(context.Context, K) error { return c.err }

type fixture struct {
	store   *fakeStore
	ip      *cache.Memory[entity.UserID, string]
	counter *cache.Memory[entity.UserID, int64]
	phrase  *cache.Memory[entity.UserID, string]
	totp    *otp.TOTP
	uc      *Usecase
}

func newFixture(t *testing.T, store *fakeStore) *fixture {
	t.Helper()

	store.t = t

	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("NewV10Validator() error = %v", err)
	}

	f := &fixture{
		store:   store,
		ip:      cache.NewMemory[entity.UserID, string]("ip-cache", 0, time.Minute),
		counter: cache.NewMemory[entity.UserID, int64]("totp-counter-cache", 0, time.Minute),
		phrase:  cache.NewMemory[entity.UserID, string]("totp-phrase-cache", 0, time.Minute),
		totp:    otp.NewTOTP(0, pqotp.DigitsSix, otp.SecretRaw),
	}

	f.uc = New(Dependency{
		Store:        store,
		IPCache:      f.ip,
		CounterCache: f.counter,
		PhraseCache:  f.phrase,
		Totp:         f.totp,
		Clock:        clock.Fixed(testNow),
		Validator:    v,
		Epoch:        testEpoch,
	})

	return f
}

func (f *fixture) codeAt(t *testing.T, at time.Time) (string, int64) {
	t.Helper()

	counter := otp.ComputeCounter(at, testEpoch, testStep)
	code, err := f.totp.CodeAt(testSecret, counter)
	if err != nil {
		t.Fatalf("CodeAt() error = %v", err)
	}
	return code, counter
}

func mustGet[V any](t *testing.T, c cache.Cache[entity.UserID, V], id entity.UserID) (V, bool) {
	t.Helper()

	v, ok, err := c.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("%s.Get() error = %v", c.Name(), err)
	}
	return v, ok
}

func assertServerError(t *testing.T, err error) {
	t.Helper()

	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		t.Fatalf("error = %v, want *goerror.Error", err)
	}
	if gerr.Type() != goerror.TypeServer {
		t.Fatalf("error type = %s, want %s", gerr.Type(), goerror.TypeServer)
	}
}
