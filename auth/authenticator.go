package auth

import (
	"context"
	"reflect"
)

// Auther orchestrates signup and signin on top of an identity provider and
// the token service. Both flows end in the same place: a signed session
// token for the resolved identity.
type Auther struct {
	provider        IdentityProvider
	registry        IdentityRegisterer
	signingKey      []byte
	tokenExpiration int
	issuer          string
	audience        []string
	logger          Logger
	tokenService    TokenService
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(provider IdentityProvider, registry IdentityRegisterer, opts Config) *Auther {
	tokenService := NewTokenService(
		[]byte(opts.GetSigningKey()),
		opts.GetTokenExpiration(),
		opts.GetIssuer(),
		opts.GetAudience(),
		defLogger{},
	)

	return &Auther{
		provider:        provider,
		registry:        registry,
		signingKey:      []byte(opts.GetSigningKey()),
		tokenExpiration: opts.GetTokenExpiration(),
		issuer:          opts.GetIssuer(),
		audience:        opts.GetAudience(),
		logger:          defLogger{},
		tokenService:    tokenService,
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = logger
	s.tokenService = NewTokenService(
		s.signingKey,
		s.tokenExpiration,
		s.issuer,
		s.audience,
		logger,
	)
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Signup registers a new identity and returns a session token for it, so a
// successful registration leaves the caller already signed in.
func (s *Auther) Signup(ctx context.Context, email, password string) (string, error) {
	identity, err := s.registry.RegisterIdentity(ctx, email, password)
	if err != nil {
		s.logger.Error("Signup register identity error: %v", err)
		return "", err
	}

	if identity == nil || reflect.ValueOf(identity).IsZero() {
		s.logger.Error("Signup identity is nil or zero value")
		return "", ErrIdentityNotFound
	}

	token, err := s.tokenService.Generate(identity)
	if err != nil {
		s.logger.Error("Signup token generation error: %v", err)
		return "", err
	}

	return token, nil
}

// Signin verifies the credential pair and returns a session token
func (s *Auther) Signin(ctx context.Context, identifier, password string) (string, error) {
	identity, err := s.provider.VerifyIdentity(ctx, identifier, password)
	if err != nil {
		s.logger.Debug("Signin verify identity error: %v", err)
		return "", err
	}

	if identity == nil || reflect.ValueOf(identity).IsZero() {
		s.logger.Error("Signin identity is nil or zero value")
		return "", ErrInvalidCredentials
	}

	token, err := s.tokenService.Generate(identity)
	if err != nil {
		s.logger.Error("Signin token generation error: %v", err)
		return "", err
	}

	return token, nil
}

// SessionFromToken validates a raw token and decodes its claims into a Session
func (s Auther) SessionFromToken(raw string) (Session, error) {
	claims, err := s.tokenService.Validate(raw)
	if err != nil {
		s.logger.Debug("SessionFromToken validation failed: %v", err)
		return nil, err
	}

	session, err := sessionFromAuthClaims(claims)
	if err != nil {
		s.logger.Error("SessionFromToken failed to create session from claims: %v", err)
		return nil, err
	}

	return session, nil
}

func (s *Auther) IdentityFromSession(ctx context.Context, session Session) (Identity, error) {
	identity, err := s.provider.FindIdentityByIdentifier(ctx, session.GetUserID())
	if err != nil {
		s.logger.Error("IdentityFromSession find identity by identifier: %v", err)
		return nil, err
	}

	return identity, nil
}

var _ Authenticator = &Auther{}
