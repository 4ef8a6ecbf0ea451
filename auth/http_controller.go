package auth

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
)

type AuthControllerRoutes struct {
	Signup string
	Signin string
}

// AuthController exposes the signup and signin endpoints. Both respond with
// a JSON body carrying the signed session token.
type AuthController struct {
	Debug  bool
	Logger Logger
	Auth   Authenticator
	Routes *AuthControllerRoutes
}

func NewAuthController(auther Authenticator) *AuthController {
	return &AuthController{
		Auth:   auther,
		Logger: defLogger{},
		Routes: &AuthControllerRoutes{
			Signup: "/auth/signup",
			Signin: "/auth/signin",
		},
	}
}

func (a *AuthController) WithLogger(l Logger) *AuthController {
	if l != nil {
		a.Logger = l
	}
	return a
}

// RegisterAuthRoutes mounts the signup and signin routes
func RegisterAuthRoutes(app *fiber.App, controller *AuthController) {
	app.Post(controller.Routes.Signup, controller.SignupPost)
	app.Post(controller.Routes.Signin, controller.SigninPost)
}

// CredentialsRequestPayload is the request body for signup and signin
type CredentialsRequestPayload struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

func (r CredentialsRequestPayload) GetIdentifier() string {
	return r.Email
}

func (r CredentialsRequestPayload) GetPassword() string {
	return r.Password
}

// Validate will validate the payload
func (r CredentialsRequestPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Length(3, 254), is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

var _ CredentialsPayload = CredentialsRequestPayload{}

func (a *AuthController) SignupPost(c *fiber.Ctx) error {
	payload := new(CredentialsRequestPayload)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("signup parse payload: %v", err)
		return badRequestResponse(c, "Error parsing body", nil)
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Debug("signup validate payload: %v", err)
		return badRequestResponse(c, "Error validating payload", err)
	}

	if a.Debug {
		fmt.Println(print.MaybePrettyJSON(maskedCredentials(payload)))
	}

	token, err := a.Auth.Signup(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return a.renderError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"access_token": token,
	})
}

func (a *AuthController) SigninPost(c *fiber.Ctx) error {
	payload := new(CredentialsRequestPayload)

	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("signin parse payload: %v", err)
		return badRequestResponse(c, "Error parsing body", nil)
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Debug("signin validate payload: %v", err)
		return badRequestResponse(c, "Error validating payload", err)
	}

	token, err := a.Auth.Signin(c.UserContext(), payload.GetIdentifier(), payload.GetPassword())
	if err != nil {
		return a.renderError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"access_token": token,
	})
}

func (a *AuthController) renderError(c *fiber.Ctx, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred")
	}

	code := richErr.Code
	if code == 0 {
		switch richErr.Category {
		case errors.CategoryValidation, errors.CategoryBadInput:
			code = fiber.StatusBadRequest
		case errors.CategoryConflict:
			code = fiber.StatusForbidden
		case errors.CategoryAuth:
			code = fiber.StatusForbidden
		default:
			code = fiber.StatusInternalServerError
		}
	}

	if code >= fiber.StatusInternalServerError {
		a.Logger.Error("auth controller error: %v", richErr)
	}

	return c.Status(code).JSON(fiber.Map{
		"error": fiber.Map{
			"message":   richErr.Message,
			"text_code": richErr.TextCode,
		},
	})
}

func badRequestResponse(c *fiber.Ctx, message string, details error) error {
	body := fiber.Map{
		"message": message,
	}

	if verr, ok := details.(validation.Errors); ok {
		body["validation"] = verr
	} else if details != nil {
		body["validation"] = details.Error()
	}

	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": body,
	})
}

func maskedCredentials(payload *CredentialsRequestPayload) map[string]string {
	return map[string]string{
		"email":    payload.Email,
		"password": "********",
	}
}
