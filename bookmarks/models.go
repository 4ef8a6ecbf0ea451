package bookmarks

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Bookmark is an owned record: every operation on it is scoped to the user
// that created it.
type Bookmark struct {
	bun.BaseModel `bun:"table:bookmarks,alias:bmk"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	Title         string     `bun:"title,notnull" json:"title,omitempty"`
	Description   string     `bun:"description" json:"description,omitempty"`
	Link          string     `bun:"link,notnull" json:"link,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// Changes carries the optional fields of a partial bookmark edit.
// Nil pointers leave the stored value untouched.
type Changes struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Link        *string `json:"link,omitempty"`
}

// IsZero reports whether the change set would modify anything
func (c Changes) IsZero() bool {
	return c.Title == nil && c.Description == nil && c.Link == nil
}
