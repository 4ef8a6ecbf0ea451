package bookmarks

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/bookmarkd/bookmarkd/auth"
)

// Controller serves the owner scoped bookmark CRUD. All routes sit behind
// the protected route middleware; the owning user is taken from the request
// context, never from the payload.
type Controller struct {
	Logger auth.Logger
	Store  Store
}

func NewController(store Store) *Controller {
	return &Controller{
		Store:  store,
		Logger: nopLogger{},
	}
}

func (b *Controller) WithLogger(l auth.Logger) *Controller {
	if l != nil {
		b.Logger = l
	}
	return b
}

// RegisterBookmarkRoutes mounts the bookmark routes behind the given middleware
func RegisterBookmarkRoutes(app *fiber.App, protected fiber.Handler, controller *Controller) {
	app.Get("/bookmarks", protected, controller.List)
	app.Post("/bookmarks", protected, controller.Create)
	app.Get("/bookmarks/:id", protected, controller.GetByID)
	app.Patch("/bookmarks/:id", protected, controller.Update)
	app.Delete("/bookmarks/:id", protected, controller.Delete)
}

// CreateBookmarkPayload is the request body for creating a bookmark
type CreateBookmarkPayload struct {
	Title       string `form:"title" json:"title"`
	Description string `form:"description" json:"description"`
	Link        string `form:"link" json:"link"`
}

// Validate will validate the payload
func (r CreateBookmarkPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Description, validation.Length(0, 2000)),
		validation.Field(&r.Link, validation.Required, is.URL),
	)
}

// EditBookmarkPayload carries the optional fields of a partial edit
type EditBookmarkPayload struct {
	Title       *string `form:"title" json:"title"`
	Description *string `form:"description" json:"description"`
	Link        *string `form:"link" json:"link"`
}

// Validate will validate the payload
func (r EditBookmarkPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Length(1, 200)),
		validation.Field(&r.Description, validation.Length(0, 2000)),
		validation.Field(&r.Link, is.URL),
	)
}

func (r EditBookmarkPayload) changes() Changes {
	return Changes{
		Title:       r.Title,
		Description: r.Description,
		Link:        r.Link,
	}
}

func (b *Controller) List(c *fiber.Ctx) error {
	user, ok := auth.UserFromRequest(c)
	if !ok {
		return unauthorizedResponse(c)
	}

	records, err := b.Store.ListByOwner(c.UserContext(), user.ID)
	if err != nil {
		return b.renderError(c, err)
	}

	return c.JSON(records)
}

func (b *Controller) Create(c *fiber.Ctx) error {
	user, ok := auth.UserFromRequest(c)
	if !ok {
		return unauthorizedResponse(c)
	}

	payload := new(CreateBookmarkPayload)
	if err := c.BodyParser(payload); err != nil {
		b.Logger.Error("bookmark create parse payload: %v", err)
		return badRequestResponse(c, "Error parsing body", nil)
	}

	if err := payload.Validate(); err != nil {
		b.Logger.Debug("bookmark create validate payload: %v", err)
		return badRequestResponse(c, "Error validating payload", err)
	}

	record := &Bookmark{
		Title:       payload.Title,
		Description: payload.Description,
		Link:        payload.Link,
	}

	created, err := b.Store.CreateOwned(c.UserContext(), user.ID, record)
	if err != nil {
		return b.renderError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (b *Controller) GetByID(c *fiber.Ctx) error {
	user, ok := auth.UserFromRequest(c)
	if !ok {
		return unauthorizedResponse(c)
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequestResponse(c, "Invalid bookmark id", nil)
	}

	record, err := b.Store.GetOwned(c.UserContext(), user.ID, id)
	if err != nil {
		return b.renderError(c, err)
	}

	return c.JSON(record)
}

func (b *Controller) Update(c *fiber.Ctx) error {
	user, ok := auth.UserFromRequest(c)
	if !ok {
		return unauthorizedResponse(c)
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequestResponse(c, "Invalid bookmark id", nil)
	}

	payload := new(EditBookmarkPayload)
	if err := c.BodyParser(payload); err != nil {
		b.Logger.Error("bookmark update parse payload: %v", err)
		return badRequestResponse(c, "Error parsing body", nil)
	}

	if err := payload.Validate(); err != nil {
		b.Logger.Debug("bookmark update validate payload: %v", err)
		return badRequestResponse(c, "Error validating payload", err)
	}

	updated, err := b.Store.UpdateOwned(c.UserContext(), user.ID, id, payload.changes())
	if err != nil {
		return b.renderError(c, err)
	}

	return c.JSON(updated)
}

func (b *Controller) Delete(c *fiber.Ctx) error {
	user, ok := auth.UserFromRequest(c)
	if !ok {
		return unauthorizedResponse(c)
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequestResponse(c, "Invalid bookmark id", nil)
	}

	if err := b.Store.DeleteOwned(c.UserContext(), user.ID, id); err != nil {
		return b.renderError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (b *Controller) renderError(c *fiber.Ctx, err error) error {
	if errors.IsNotFound(err) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": fiber.Map{
				"message":   ErrBookmarkNotFound.Message,
				"text_code": ErrBookmarkNotFound.TextCode,
			},
		})
	}

	b.Logger.Error("bookmark controller error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": fiber.Map{"message": "An unexpected server error occurred"},
	})
}

func unauthorizedResponse(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": fiber.Map{"message": "Unauthorized"},
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

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
