package auth

import (
	goerrs "errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/nyaruka/phonenumbers"
)

// ProfileController serves the authenticated user's profile: a read endpoint
// and a partial update. Both routes sit behind the protected route
// middleware, which resolves the user record into the request context.
type ProfileController struct {
	Logger Logger
	Users  Users
}

func NewProfileController(users Users) *ProfileController {
	return &ProfileController{
		Users:  users,
		Logger: defLogger{},
	}
}

func (p *ProfileController) WithLogger(l Logger) *ProfileController {
	if l != nil {
		p.Logger = l
	}
	return p
}

// RegisterProfileRoutes mounts the profile routes behind the given middleware
func RegisterProfileRoutes(app *fiber.App, protected fiber.Handler, controller *ProfileController) {
	app.Get("/users/me", protected, controller.MeGet)
	app.Patch("/users", protected, controller.UpdatePatch)
}

// ProfileUpdatePayload carries the editable profile fields. Absent fields are
// left untouched; present fields are validated.
type ProfileUpdatePayload struct {
	Email     *string `form:"email" json:"email"`
	FirstName *string `form:"first_name" json:"first_name"`
	LastName  *string `form:"last_name" json:"last_name"`
	Phone     *string `form:"phone_number" json:"phone_number"`
}

// Validate will validate the payload
func (r ProfileUpdatePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Length(3, 254), is.Email),
		validation.Field(&r.FirstName, validation.Length(1, 200)),
		validation.Field(&r.LastName, validation.Length(1, 200)),
		validation.Field(&r.Phone, validation.By(validPhoneNumber)),
	)
}

func (r ProfileUpdatePayload) changes() ProfileChanges {
	return ProfileChanges{
		Email:     r.Email,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Phone:     r.Phone,
	}
}

func (p *ProfileController) MeGet(c *fiber.Ctx) error {
	user, ok := UserFromRequest(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": fiber.Map{"message": "Unauthorized"},
		})
	}

	return c.JSON(user)
}

func (p *ProfileController) UpdatePatch(c *fiber.Ctx) error {
	user, ok := UserFromRequest(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": fiber.Map{"message": "Unauthorized"},
		})
	}

	payload := new(ProfileUpdatePayload)
	if err := c.BodyParser(payload); err != nil {
		p.Logger.Error("profile update parse payload: %v", err)
		return badRequestResponse(c, "Error parsing body", nil)
	}

	if err := payload.Validate(); err != nil {
		p.Logger.Debug("profile update validate payload: %v", err)
		return badRequestResponse(c, "Error validating payload", err)
	}

	changes := payload.changes()
	if changes.IsZero() {
		return c.JSON(user)
	}

	updated, err := p.Users.UpdateProfile(c.UserContext(), user.ID, changes)
	if err != nil {
		return p.renderError(c, err)
	}

	return c.JSON(updated)
}

func (p *ProfileController) renderError(c *fiber.Ctx, err error) error {
	if errors.IsNotFound(err) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": fiber.Map{"message": "user not found"},
		})
	}

	if IsConflictError(err) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": fiber.Map{
				"message":   ErrCredentialTaken.Message,
				"text_code": ErrCredentialTaken.TextCode,
			},
		})
	}

	p.Logger.Error("profile controller error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": fiber.Map{"message": "An unexpected server error occurred"},
	})
}

// validPhoneNumber accepts any number phonenumbers can parse and verify.
// Region defaults to US for national formats.
func validPhoneNumber(value any) error {
	v, isNil := validation.Indirect(value)
	if isNil {
		return nil
	}

	s, _ := v.(string)
	if s == "" {
		return nil
	}

	num, err := phonenumbers.Parse(s, "US")
	if err != nil {
		return goerrs.New("must be a valid phone number")
	}

	if !phonenumbers.IsValidNumber(num) {
		return goerrs.New("must be a valid phone number")
	}

	return nil
}
