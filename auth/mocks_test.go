package auth_test

import (
	"context"
	"sync"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"

	"github.com/bookmarkd/bookmarkd/auth"
)

// MockIdentity implements auth.Identity for testing
type MockIdentity struct {
	mock.Mock
}

func (m *MockIdentity) ID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockIdentity) Email() string {
	args := m.Called()
	return args.String(0)
}

// MockLogger implements auth.Logger for testing
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Info(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Warn(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Error(format string, args ...any) {
	m.Called(format, args)
}

// MockIdentityProvider implements auth.IdentityProvider
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) VerifyIdentity(ctx context.Context, identifier, password string) (auth.Identity, error) {
	args := m.Called(ctx, identifier, password)
	var identity auth.Identity
	if v := args.Get(0); v != nil {
		identity = v.(auth.Identity)
	}
	return identity, args.Error(1)
}

func (m *MockIdentityProvider) FindIdentityByIdentifier(ctx context.Context, identifier string) (auth.Identity, error) {
	args := m.Called(ctx, identifier)
	var identity auth.Identity
	if v := args.Get(0); v != nil {
		identity = v.(auth.Identity)
	}
	return identity, args.Error(1)
}

// MockIdentityRegisterer implements auth.IdentityRegisterer
type MockIdentityRegisterer struct {
	mock.Mock
}

func (m *MockIdentityRegisterer) RegisterIdentity(ctx context.Context, email, password string) (auth.Identity, error) {
	args := m.Called(ctx, email, password)
	var identity auth.Identity
	if v := args.Get(0); v != nil {
		identity = v.(auth.Identity)
	}
	return identity, args.Error(1)
}

// testConfig implements auth.Config
type testConfig struct {
	signingKey  string
	expiration  int
	issuer      string
	audience    []string
	contextKey  string
	tokenLookup string
	authScheme  string
}

func newTestConfig() *testConfig {
	return &testConfig{
		signingKey:  "test-signing-key",
		expiration:  15,
		issuer:      "bookmarkd-test",
		contextKey:  "user",
		tokenLookup: "header:Authorization",
		authScheme:  "Bearer",
	}
}

func (c *testConfig) GetSigningKey() string    { return c.signingKey }
func (c *testConfig) GetSigningMethod() string { return "HS256" }
func (c *testConfig) GetContextKey() string    { return c.contextKey }
func (c *testConfig) GetTokenExpiration() int  { return c.expiration }
func (c *testConfig) GetTokenLookup() string   { return c.tokenLookup }
func (c *testConfig) GetAuthScheme() string    { return c.authScheme }
func (c *testConfig) GetIssuer() string        { return c.issuer }
func (c *testConfig) GetAudience() []string    { return c.audience }

// memoryUsers is an in-memory auth.Users used by the HTTP level tests. It
// enforces the same email uniqueness the real store gets from its constraint.
type memoryUsers struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*auth.User
}

var _ auth.Users = (*memoryUsers)(nil)

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byID: map[uuid.UUID]*auth.User{}}
}

func (m *memoryUsers) Register(ctx context.Context, user *auth.User) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.byID {
		if existing.Email == user.Email {
			return nil, goerrors.New("email already registered", goerrors.CategoryConflict).
				WithTextCode("CREDENTIAL_TAKEN")
		}
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	stored := *user
	m.byID[user.ID] = &stored

	copied := stored
	return &copied, nil
}

func (m *memoryUsers) RegisterTx(ctx context.Context, tx bun.IDB, user *auth.User) (*auth.User, error) {
	return m.Register(ctx, user)
}

func (m *memoryUsers) GetByEmail(ctx context.Context, email string, criteria ...repository.SelectCriteria) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, user := range m.byID {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}

	return nil, notFoundErr()
}

func (m *memoryUsers) GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (*auth.User, error) {
	if id, err := uuid.Parse(identifier); err == nil {
		m.mu.Lock()
		defer m.mu.Unlock()

		if user, ok := m.byID[id]; ok {
			copied := *user
			return &copied, nil
		}
		return nil, notFoundErr()
	}

	return m.GetByEmail(ctx, identifier)
}

func (m *memoryUsers) UpdateProfile(ctx context.Context, id uuid.UUID, changes auth.ProfileChanges) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.byID[id]
	if !ok {
		return nil, notFoundErr()
	}

	if changes.Email != nil {
		for otherID, other := range m.byID {
			if otherID != id && other.Email == *changes.Email {
				return nil, goerrors.New("email already registered", goerrors.CategoryConflict).
					WithTextCode("CREDENTIAL_TAKEN")
			}
		}
		user.Email = *changes.Email
	}
	if changes.FirstName != nil {
		user.FirstName = *changes.FirstName
	}
	if changes.LastName != nil {
		user.LastName = *changes.LastName
	}
	if changes.Phone != nil {
		user.Phone = *changes.Phone
	}

	copied := *user
	return &copied, nil
}

func notFoundErr() error {
	return goerrors.New("user not found", goerrors.CategoryNotFound).
		WithTextCode("USER_NOT_FOUND")
}
