package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"

	"github.com/bookmarkd/bookmarkd/middleware/jwtware"
)

// RouteAuthenticator wires the authenticator into HTTP routes: it builds the
// token middleware for protected routes and owns the error rendering for
// failed authentication.
type RouteAuthenticator struct {
	auth         Authenticator
	tokens       TokenService
	users        Users
	cfg          Config
	Logger       Logger
	ErrorHandler func(c *fiber.Ctx, err error) error
}

func NewHTTPAuthenticator(auther Authenticator, tokens TokenService, users Users, cfg Config) (*RouteAuthenticator, error) {
	a := &RouteAuthenticator{
		auth:   auther,
		tokens: tokens,
		users:  users,
		cfg:    cfg,
		Logger: defLogger{},
	}

	a.ErrorHandler = a.defaultErrHandler

	return a, nil
}

func (a *RouteAuthenticator) WithLogger(l Logger) *RouteAuthenticator {
	if l != nil {
		a.Logger = l
	}
	return a
}

// ProtectedRoute returns the middleware that guards a route group. Tokens are
// validated by the TokenService, then the subject claim is resolved against
// the user store and the record is attached to the request context.
func (a *RouteAuthenticator) ProtectedRoute(errorHandler func(*fiber.Ctx, error) error) fiber.Handler {
	if errorHandler == nil {
		errorHandler = a.ErrorHandler
	}

	return jwtware.New(jwtware.Config{
		ErrorHandler:   errorHandler,
		TokenValidator: tokenValidatorAdapter{service: a.tokens},
		SigningKey: jwtware.SigningKey{
			Key:    []byte(a.cfg.GetSigningKey()),
			JWTAlg: a.cfg.GetSigningMethod(),
		},
		AuthScheme:      a.cfg.GetAuthScheme(),
		ContextKey:      a.cfg.GetContextKey(),
		TokenLookup:     a.cfg.GetTokenLookup(),
		ContextEnricher: enrichContextWithClaims,
		ValidationListeners: []jwtware.ValidationListener{
			a.resolveRequestUser,
		},
	})
}

// resolveRequestUser loads the user record named by the token subject and
// attaches it to the request context. A token whose subject no longer exists
// is rejected even though its signature is valid.
func (a *RouteAuthenticator) resolveRequestUser(c *fiber.Ctx, claims jwtware.AuthClaims) error {
	user, err := a.users.GetByIdentifier(c.UserContext(), claims.Subject())
	if err != nil {
		a.Logger.Debug("could not resolve token subject: %v", err)
		return errors.Wrap(err, errors.CategoryAuth, "token subject no longer valid").
			WithCode(errors.CodeUnauthorized)
	}

	c.SetUserContext(WithContext(c.UserContext(), user))
	return nil
}

// MakeClientRouteAuthErrorHandler builds an error handler for the token
// middleware. With optional set, authentication failures let the request
// proceed anonymously instead of rejecting it.
func (a *RouteAuthenticator) MakeClientRouteAuthErrorHandler(optional bool) func(*fiber.Ctx, error) error {
	return func(c *fiber.Ctx, err error) error {
		var richErr *errors.Error

		if IsTokenExpiredError(err) {
			richErr = ErrTokenExpired
		} else if IsMalformedError(err) {
			richErr = ErrTokenMalformed
		} else {
			richErr = errors.Wrap(err, errors.CategoryAuth, "Invalid authentication token").
				WithCode(errors.CodeUnauthorized)
		}

		if optional {
			a.Logger.Info("Optional auth failed, proceeding: %s", richErr.Message)
			return c.Next()
		}

		return a.ErrorHandler(c, richErr)
	}
}

func (a *RouteAuthenticator) defaultErrHandler(c *fiber.Ctx, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryAuth, "Invalid authentication token").
			WithCode(errors.CodeUnauthorized)
	}

	a.Logger.Info(
		"Middleware error handler: %s %s %s",
		richErr.Message,
		richErr.Category,
		print.MaybePrettyJSON(richErr.Metadata),
	)

	code := richErr.Code
	if code == 0 {
		code = fiber.StatusUnauthorized
	}

	return c.Status(code).JSON(fiber.Map{
		"error": fiber.Map{
			"message":   richErr.Message,
			"text_code": richErr.TextCode,
		},
	})
}

// enrichContextWithClaims copies the validated claims into the request
// context so handlers can read them via GetClaims without touching the
// raw token.
func enrichContextWithClaims(ctx context.Context, claims jwtware.AuthClaims) context.Context {
	if ac, ok := claims.(AuthClaims); ok {
		return WithClaimsContext(ctx, ac)
	}
	return ctx
}

// tokenValidatorAdapter bridges the auth TokenService into the middleware
// without an import cycle.
type tokenValidatorAdapter struct {
	service TokenService
}

func (t tokenValidatorAdapter) Validate(tokenString string) (jwtware.AuthClaims, error) {
	claims, err := t.service.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}
