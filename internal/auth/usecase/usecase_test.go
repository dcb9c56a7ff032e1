package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mehran-jafari/account/internal/auth/entity"
	"github.com/mehran-jafari/account/internal/pkg/goerror"
	"github.com/mehran-jafari/account/internal/pkg/instrument"
	"github.com/mehran-jafari/account/internal/pkg/jwt"
	"github.com/mehran-jafari/account/internal/pkg/validator"
)

func asGoError(err error, target **goerror.Error) bool {
	return errors.As(err, target)
}

// fakeConfig serves test values from a flat map. Duration keys hold their
// unit as written in config (seconds or minutes).
type fakeConfig struct {
	values map[string]any
}

func newFakeConfig() *fakeConfig {
	return &fakeConfig{values: map[string]any{
		"modules.auth.otp_validity_minutes":         5,
		"modules.auth.otp_max_generation_attempts":  3,
		"modules.auth.login_max_attempts":           5,
		"modules.auth.login_lockout_window_seconds": 300,
	}}
}

func (c *fakeConfig) intVal(key string) int64 {
	if v, ok := c.values[key].(int); ok {
		return int64(v)
	}
	return 0
}

func (c *fakeConfig) Close() error                      { return nil }
func (c *fakeConfig) GetSecond(key string) time.Duration {
	return time.Duration(c.intVal(key)) * time.Second
}
func (c *fakeConfig) GetMinute(key string) time.Duration {
	return time.Duration(c.intVal(key)) * time.Minute
}
func (c *fakeConfig) GetHour(key string) time.Duration { return time.Duration(c.intVal(key)) * time.Hour }
func (c *fakeConfig) GetDay(key string) time.Duration {
	return time.Duration(c.intVal(key)) * 24 * time.Hour
}
func (c *fakeConfig) GetInt(key string) int         { return int(c.intVal(key)) }
func (c *fakeConfig) GetInt32(key string) int32     { return int32(c.intVal(key)) }
func (c *fakeConfig) GetInt64(key string) int64     { return c.intVal(key) }
func (c *fakeConfig) GetUint(key string) uint       { return uint(c.intVal(key)) }
func (c *fakeConfig) GetUint16(key string) uint16   { return uint16(c.intVal(key)) }
func (c *fakeConfig) GetUint32(key string) uint32   { return uint32(c.intVal(key)) }
func (c *fakeConfig) GetUint64(key string) uint64   { return uint64(c.intVal(key)) }
func (c *fakeConfig) GetFloat32(key string) float32 { return 0 }
func (c *fakeConfig) GetFloat64(key string) float64 { return 0 }
func (c *fakeConfig) GetBool(key string) bool {
	v, _ := c.values[key].(bool)
	return v
}
func (c *fakeConfig) GetString(key string) string {
	v, _ := c.values[key].(string)
	return v
}
func (c *fakeConfig) GetBinary(key string) []byte          { return nil }
func (c *fakeConfig) GetArray(key string) []string         { return nil }
func (c *fakeConfig) GetMap(key string) map[string]string  { return nil }

// fakeRepoDB is an in-memory store. Behavior overrides let a test inject
// collisions or failures per call.
type fakeRepoDB struct {
	mu    sync.Mutex
	users map[string]entity.UserLoginInfo // keyed by phone
	codes map[int64]entity.Code           // keyed by code ID

	createCodeErrs   []error // popped per CreateCode/ReplaceCode call
	failedLoginCalls int
	resetLoginCalls  int
	replaceCalls     int
}

func newFakeRepoDB() *fakeRepoDB {
	return &fakeRepoDB{
		users: map[string]entity.UserLoginInfo{},
		codes: map[int64]entity.Code{},
	}
}

func (f *fakeRepoDB) addUser(u entity.UserLoginInfo) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[u.PhoneNumber] = u
}

func (f *fakeRepoDB) GetUserByPhone(_ context.Context, phone string) (entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[phone]
	if !ok {
		return entity.User{}, goerror.ErrNotFound
	}
	return entity.User{
		ID:          u.ID,
		PhoneNumber: u.PhoneNumber,
		Status:      u.Status,
		LockedUntil: u.LockedUntil,
	}, nil
}

func (f *fakeRepoDB) GetUserLoginInfo(_ context.Context, phone string) (entity.UserLoginInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[phone]
	if !ok {
		return entity.UserLoginInfo{}, goerror.ErrNotFound
	}
	return u, nil
}

func (f *fakeRepoDB) GetCodeByUserNumber(_ context.Context, userID int64, number string) (entity.Code, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.codes {
		if c.UserID == userID && c.Number == number && !c.IsUsed {
			return c, nil
		}
	}
	return entity.Code{}, goerror.ErrNotFound
}

func (f *fakeRepoDB) GetActiveCode(_ context.Context, userID int64, now time.Time) (entity.Code, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.codes {
		if c.UserID == userID && !c.IsUsed && now.Before(c.ExpiresAt) {
			return c, nil
		}
	}
	return entity.Code{}, goerror.ErrNotFound
}

func (f *fakeRepoDB) popCreateErr() error {
	if len(f.createCodeErrs) == 0 {
		return nil
	}
	err := f.createCodeErrs[0]
	f.createCodeErrs = f.createCodeErrs[1:]
	return err
}

func (f *fakeRepoDB) CreateCode(_ context.Context, code entity.Code) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.popCreateErr(); err != nil {
		return err
	}
	f.codes[code.ID] = code
	return nil
}

func (f *fakeRepoDB) ReplaceCode(_ context.Context, code entity.Code) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replaceCalls++
	if err := f.popCreateErr(); err != nil {
		return err
	}
	for id, c := range f.codes {
		if c.UserID == code.UserID && !c.IsUsed {
			delete(f.codes, id)
		}
	}
	f.codes[code.ID] = code
	return nil
}

func (f *fakeRepoDB) MarkCodeUsed(_ context.Context, codeID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.codes[codeID]
	if !ok || c.IsUsed {
		return false, nil
	}
	c.IsUsed = true
	f.codes[codeID] = c
	return true, nil
}

func (f *fakeRepoDB) DeleteUnusedCodes(_ context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, c := range f.codes {
		if c.UserID == userID && !c.IsUsed {
			delete(f.codes, id)
		}
	}
	return nil
}

func (f *fakeRepoDB) NewRegistration(_ context.Context, reg entity.NewRegistration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.popCreateErr(); err != nil {
		return err
	}
	f.users[reg.PhoneNumber] = entity.UserLoginInfo{
		ID:          reg.UserID,
		PhoneNumber: reg.PhoneNumber,
		Status:      entity.UserStatusUnverified,
		Password:    reg.Password,
	}
	f.codes[reg.Code.ID] = reg.Code
	return nil
}

func (f *fakeRepoDB) ConsumeCodeAndActivate(_ context.Context, codeID, userID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.codes[codeID]
	if !ok || c.IsUsed {
		return false, nil
	}
	c.IsUsed = true
	f.codes[codeID] = c
	for phone, u := range f.users {
		if u.ID == userID {
			u.Status = entity.UserStatusActive
			f.users[phone] = u
		}
	}
	return true, nil
}

func (f *fakeRepoDB) ConsumeCodeAndSetPassword(_ context.Context, codeID, userID int64, hash string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.codes[codeID]
	if !ok || c.IsUsed {
		return false, nil
	}
	c.IsUsed = true
	f.codes[codeID] = c
	for phone, u := range f.users {
		if u.ID == userID {
			u.Password = hash
			f.users[phone] = u
		}
	}
	return true, nil
}

func (f *fakeRepoDB) IncrementFailedLogin(_ context.Context, userID int64, max int32, lockedUntil time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failedLoginCalls++
	return nil
}

func (f *fakeRepoDB) ResetFailedLogin(_ context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetLoginCalls++
	return nil
}

func (f *fakeRepoDB) unusedCodeFor(userID int64) (entity.Code, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.codes {
		if c.UserID == userID && !c.IsUsed {
			return c, true
		}
	}
	return entity.Code{}, false
}

type fakeMessaging struct {
	mu     sync.Mutex
	events []CodeIssuedEvent
	err    error
}

func (f *fakeMessaging) PublishCodeIssued(_ context.Context, msg CodeIssuedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, msg)
	return nil
}

func (f *fakeMessaging) published() []CodeIssuedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]CodeIssuedEvent(nil), f.events...)
}

// fakeLimiter counts failures in memory.
type fakeLimiter struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func newFakeLimiter() *fakeLimiter {
	return &fakeLimiter{counts: map[string]int64{}}
}

func (f *fakeLimiter) AllowOnce(_ context.Context, key string, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	if f.counts[key] > 0 {
		return false, nil
	}
	f.counts[key] = 1
	return true, nil
}

func (f *fakeLimiter) Fail(_ context.Context, key string, _ time.Duration, max int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	f.counts[key]++
	return f.counts[key] >= max, nil
}

func (f *fakeLimiter) Count(_ context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	return f.counts[key], nil
}

func (f *fakeLimiter) Reset(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.counts, key)
	return nil
}

// fakeGenerator serves digits from a fixed queue, cycling the last entry.
type fakeGenerator struct {
	mu    sync.Mutex
	queue []string
}

func (f *fakeGenerator) Generate() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queue) == 0 {
		return "55555", nil
	}
	digits := f.queue[0]
	if len(f.queue) > 1 {
		f.queue = f.queue[1:]
	}
	return digits, nil
}

// fakeHash records plaintexts so tests can assert without real bcrypt cost.
type fakeHash struct{}

func (fakeHash) Hash(plaintext string) ([]byte, error) { return []byte("hashed:" + plaintext), nil }
func (fakeHash) Verify(hashed, plaintext string) bool  { return hashed == "hashed:"+plaintext }

type seqUID struct {
	mu   sync.Mutex
	next int64
}

func (s *seqUID) Generate() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return s.next
}

type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time { return c.now }

type fakeJWT struct{ err error }

func (f *fakeJWT) Generate(uid int64, phone string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "token-for-" + phone, nil
}

func (f *fakeJWT) Verify(tokenStr string) (jwt.Claims, error) { return jwt.Claims{}, nil }

type testEnv struct {
	uc      *Usecase
	repo    *fakeRepoDB
	msg     *fakeMessaging
	limiter *fakeLimiter
	gen     *fakeGenerator
	cfg     *fakeConfig
	clock   *fixedClock
	jwt     *fakeJWT
}

func newTestEnv(t interface{ Fatalf(string, ...any) }) *testEnv {
	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("init validator: %v", err)
	}

	env := &testEnv{
		repo:    newFakeRepoDB(),
		msg:     &fakeMessaging{},
		limiter: newFakeLimiter(),
		gen:     &fakeGenerator{},
		cfg:     newFakeConfig(),
		clock:   &fixedClock{now: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)},
		jwt:     &fakeJWT{},
	}
	env.uc = New(Dependency{
		RepoDB:        env.repo,
		RepoMessaging: env.msg,
		Validator:     v,
		Config:        env.cfg,
		Bcrypt:        fakeHash{},
		CodeGen:       env.gen,
		Limiter:       env.limiter,
		UID:           &seqUID{},
		Clock:         env.clock,
		JWT:           env.jwt,
		Instrument:    instrument.NewNoop(),
	})

	return env
}
