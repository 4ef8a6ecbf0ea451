package bookmarks

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ErrBookmarkNotFound covers both a missing bookmark and one owned by a
// different user. The two cases are indistinguishable on purpose: a caller
// should not learn that someone else's bookmark id exists.
var ErrBookmarkNotFound = goerrors.New("bookmark not found", goerrors.CategoryNotFound).
	WithTextCode("BOOKMARK_NOT_FOUND")

// Store is the owner scoped persistence surface for bookmarks. Every method
// takes the owner id; there is no way to reach another user's records.
type Store interface {
	CreateOwned(ctx context.Context, ownerID uuid.UUID, bookmark *Bookmark) (*Bookmark, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Bookmark, error)
	GetOwned(ctx context.Context, ownerID, id uuid.UUID) (*Bookmark, error)
	UpdateOwned(ctx context.Context, ownerID, id uuid.UUID, changes Changes) (*Bookmark, error)
	DeleteOwned(ctx context.Context, ownerID, id uuid.UUID) error
}

type store struct {
	repository.Repository[*Bookmark]
	db *bun.DB
}

var _ Store = (*store)(nil)

func NewStore(db *bun.DB) Store {
	repo := repository.NewRepository[*Bookmark](db, repository.ModelHandlers[*Bookmark]{
		NewRecord: func() *Bookmark { return &Bookmark{} },
		GetID: func(b *Bookmark) uuid.UUID {
			if b == nil {
				return uuid.Nil
			}
			return b.ID
		},
		SetID: func(b *Bookmark, id uuid.UUID) {
			if b != nil {
				b.ID = id
			}
		},
		GetIdentifier: func() string {
			return "id"
		},
	})

	return &store{
		Repository: repo,
		db:         db,
	}
}

func (s *store) CreateOwned(ctx context.Context, ownerID uuid.UUID, bookmark *Bookmark) (*Bookmark, error) {
	if bookmark.ID == uuid.Nil {
		bookmark.ID = uuid.New()
	}
	bookmark.UserID = ownerID

	created, err := s.Create(ctx, bookmark)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "could not create bookmark")
	}

	return created, nil
}

func (s *store) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Bookmark, error) {
	records := make([]*Bookmark, 0)

	err := s.db.NewSelect().
		Model(&records).
		Where("?TableAlias.user_id = ?", ownerID).
		Order("created_at DESC").
		Scan(ctx)

	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "could not list bookmarks")
	}

	return records, nil
}

func (s *store) GetOwned(ctx context.Context, ownerID, id uuid.UUID) (*Bookmark, error) {
	record := &Bookmark{}

	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Where("?TableAlias.user_id = ?", ownerID).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrBookmarkNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "could not load bookmark")
	}

	return record, nil
}

func (s *store) UpdateOwned(ctx context.Context, ownerID, id uuid.UUID, changes Changes) (*Bookmark, error) {
	if changes.IsZero() {
		return s.GetOwned(ctx, ownerID, id)
	}

	record := &Bookmark{ID: id}
	columns := make([]string, 0, 3)

	if changes.Title != nil {
		record.Title = *changes.Title
		columns = append(columns, "title")
	}
	if changes.Description != nil {
		record.Description = *changes.Description
		columns = append(columns, "description")
	}
	if changes.Link != nil {
		record.Link = *changes.Link
		columns = append(columns, "link")
	}

	res, err := s.db.NewUpdate().
		Model(record).
		Column(columns...).
		WherePK().
		Where("user_id = ?", ownerID).
		Where("deleted_at IS NULL").
		Exec(ctx)

	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "could not update bookmark")
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return nil, ErrBookmarkNotFound
	}

	return s.GetOwned(ctx, ownerID, id)
}

func (s *store) DeleteOwned(ctx context.Context, ownerID, id uuid.UUID) error {
	res, err := s.db.NewDelete().
		Model((*Bookmark)(nil)).
		Where("?TableAlias.id = ?", id).
		Where("?TableAlias.user_id = ?", ownerID).
		Exec(ctx)

	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "could not delete bookmark")
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return ErrBookmarkNotFound
	}

	return nil
}
