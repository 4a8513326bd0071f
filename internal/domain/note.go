package domain

import (
	"context"
	"time"
)

// OwnerID identifies the authenticated owner in note queries. It is a
// distinct type so a query against the note store cannot be constructed
// without a caller id resolved by the auth gate; handlers never pass a
// client-supplied value here.
type OwnerID int64

// Note is a personal text note belonging to exactly one user.
type Note struct {
	ID        int64
	Title     string
	Body      string
	AuthorID  int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NoteRepository defines persistence operations for notes. Every method is
// scoped by owner: a note owned by someone else behaves as if it does not
// exist.
type NoteRepository interface {
	Create(ctx context.Context, owner OwnerID, note *Note) error
	GetByID(ctx context.Context, owner OwnerID, id int64) (*Note, error)
	ListByOwner(ctx context.Context, owner OwnerID, offset, limit int) ([]Note, error)
	Update(ctx context.Context, owner OwnerID, note *Note) error
	Delete(ctx context.Context, owner OwnerID, id int64) error
}
