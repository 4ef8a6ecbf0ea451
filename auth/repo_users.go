package auth

import (
	"context"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Users is the persistence surface the auth core needs from the identity
// store: one uniqueness-enforcing write and two lookups.
type Users interface {
	Register(ctx context.Context, user *User) (*User, error)
	RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)
	GetByEmail(ctx context.Context, email string, criteria ...repository.SelectCriteria) (*User, error)
	GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (*User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, changes ProfileChanges) (*User, error)
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var _ Users = (*users)(nil)

func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) Register(ctx context.Context, user *User) (*User, error) {
	return a.RegisterTx(ctx, a.db, user)
}

// RegisterTx inserts the user and relies on the unique email constraint to
// reject duplicates; there is no read-before-write.
func (a *users) RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	created, err := a.CreateTx(ctx, tx, user)
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, goerrors.Wrap(err, goerrors.CategoryConflict, "email already registered").
				WithTextCode("CREDENTIAL_TAKEN")
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "could not create user")
	}

	return created, nil
}

func (a *users) GetByEmail(ctx context.Context, email string, criteria ...repository.SelectCriteria) (*User, error) {
	record := &User{}
	q := a.db.NewSelect().Model(record)

	for _, c := range criteria {
		q.Apply(c)
	}

	err := q.
		Where("?TableAlias.email = ?", email).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, goerrors.New("user not found", goerrors.CategoryNotFound).
				WithTextCode("USER_NOT_FOUND")
		}
		return nil, err
	}

	return record, nil
}

// GetByIdentifier resolves either a user id or an email address
func (a *users) GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (*User, error) {
	identifier = strings.TrimSpace(identifier)

	if id, err := uuid.Parse(identifier); err == nil {
		record := &User{}
		q := a.db.NewSelect().Model(record)

		for _, c := range criteria {
			q.Apply(c)
		}

		err := q.
			Where("?TableAlias.id = ?", id).
			Limit(1).
			Scan(ctx)

		if err != nil {
			if repository.IsRecordNotFound(err) {
				return nil, goerrors.New("user not found", goerrors.CategoryNotFound).
					WithTextCode("USER_NOT_FOUND")
			}
			return nil, err
		}

		return record, nil
	}

	return a.GetByEmail(ctx, identifier, criteria...)
}

// UpdateProfile applies the non-nil fields of changes to the stored record
// and returns the updated row.
func (a *users) UpdateProfile(ctx context.Context, id uuid.UUID, changes ProfileChanges) (*User, error) {
	user := &User{ID: id}
	columns := make([]string, 0, 4)

	if changes.Email != nil {
		user.Email = *changes.Email
		columns = append(columns, "email")
	}
	if changes.FirstName != nil {
		user.FirstName = *changes.FirstName
		columns = append(columns, "first_name")
	}
	if changes.LastName != nil {
		user.LastName = *changes.LastName
		columns = append(columns, "last_name")
	}
	if changes.Phone != nil {
		user.Phone = *changes.Phone
		columns = append(columns, "phone_number")
	}

	if len(columns) == 0 {
		return a.GetByIdentifier(ctx, id.String())
	}

	res, err := a.db.NewUpdate().
		Model(user).
		Column(columns...).
		WherePK().
		Where("deleted_at IS NULL").
		Exec(ctx)

	if err != nil {
		if IsUniqueViolation(err) {
			return nil, goerrors.Wrap(err, goerrors.CategoryConflict, "email already registered").
				WithTextCode("CREDENTIAL_TAKEN")
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "could not update profile")
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return nil, goerrors.New("user not found", goerrors.CategoryNotFound).
			WithTextCode("USER_NOT_FOUND")
	}

	return a.GetByIdentifier(ctx, id.String())
}

// IsUniqueViolation matches the unique-constraint errors of the dialects we
// target; the store constraint is where signup atomicity lives, so this is
// the only place the violation shape is interpreted.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "constraint failed: UNIQUE") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}
