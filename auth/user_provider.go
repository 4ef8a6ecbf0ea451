package auth

import (
	"context"
	"strings"

	"github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
)

// IdentityStore is the slice of the Users repository the provider needs
type IdentityStore interface {
	Register(ctx context.Context, user *User) (*User, error)
	GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (*User, error)
}

// UserProvider resolves and registers identities against the user store
type UserProvider struct {
	store  IdentityStore
	logger Logger
}

// NewUserProvider will create a new UserProvider
func NewUserProvider(store IdentityStore) *UserProvider {
	return &UserProvider{
		store:  store,
		logger: defLogger{},
	}
}

func (u *UserProvider) WithLogger(l Logger) *UserProvider {
	if l != nil {
		u.logger = l
	}
	return u
}

// VerifyIdentity finds the user and compares the password against the stored
// hash. An unknown identifier and a wrong password both return
// ErrInvalidCredentials so callers cannot probe which emails exist; the
// underlying cause is only visible at debug level.
func (u *UserProvider) VerifyIdentity(ctx context.Context, identifier, password string) (Identity, error) {
	user, err := u.store.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.IsNotFound(err) {
			u.logger.Debug("identity verification failed, unknown identifier: %s", identifier)
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user during verification")
	}

	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		if errors.Is(err, ErrMismatchedHashAndPassword) {
			u.logger.Debug("identity verification failed, password mismatch: %s", identifier)
			return nil, ErrInvalidCredentials
		}
		// a hash that bcrypt cannot parse is a data problem, not a bad guess
		u.logger.Error("identity verification failed, unreadable stored hash: %s", identifier)
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to verify stored credential")
	}

	return NewIdentityFromUser(user), nil
}

// FindIdentityByIdentifier resolves an identity without checking credentials.
// Unlike VerifyIdentity it keeps the not found error intact, callers here
// already hold a validated token.
func (u *UserProvider) FindIdentityByIdentifier(ctx context.Context, identifier string) (Identity, error) {
	user, err := u.store.GetByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}

	if user == nil {
		return nil, ErrIdentityNotFound
	}

	return NewIdentityFromUser(user), nil
}

// RegisterIdentity hashes the password and creates the user record. The email
// unique constraint is the only duplicate check; a violation surfaces as
// ErrCredentialTaken.
func (u *UserProvider) RegisterIdentity(ctx context.Context, email, password string) (Identity, error) {
	email = strings.TrimSpace(email)

	hash, err := HashPassword(password)
	if err != nil {
		var richErr *errors.Error
		if errors.As(err, &richErr) {
			return nil, errors.Wrap(richErr, errors.CategoryValidation, "invalid password provided")
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to hash password")
	}

	user := &User{
		Email:        email,
		PasswordHash: hash,
	}

	// deterministic id derived from the email, falls back to a random
	// uuid inside the store if derivation fails
	if id, err := hashid.NewUUID(email); err == nil {
		user.ID = id
	}

	created, err := u.store.Register(ctx, user)
	if err != nil {
		if IsConflictError(err) {
			u.logger.Debug("registration rejected, email taken: %s", email)
			return nil, ErrCredentialTaken
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to register user")
	}

	u.logger.Info("registered new identity: %s", created.ID.String())

	return NewIdentityFromUser(created), nil
}

var _ IdentityProvider = &UserProvider{}
var _ IdentityRegisterer = &UserProvider{}
