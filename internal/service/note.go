package service

import (
	"context"
	"fmt"

	"github.com/mkowalski/notekeeper/internal/domain"
)

const (
	defaultListLimit = 10
)

// NoteService implements owner-scoped note CRUD. Callers supply the owner
// id resolved by the auth gate; notes belonging to anyone else are
// reported as not found.
type NoteService struct {
	notes domain.NoteRepository
}

// NewNoteService creates a new NoteService.
func NewNoteService(notes domain.NoteRepository) *NoteService {
	return &NoteService{notes: notes}
}

// Create stores a new note for the given owner and returns it with its
// assigned id.
func (s *NoteService) Create(ctx context.Context, owner domain.OwnerID, title, body string) (*domain.Note, error) {
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	note := &domain.Note{
		Title: title,
		Body:  body,
	}
	if err := s.notes.Create(ctx, owner, note); err != nil {
		return nil, err
	}
	return note, nil
}

// Get returns the note with the given id if the owner has access to it.
func (s *NoteService) Get(ctx context.Context, owner domain.OwnerID, id int64) (*domain.Note, error) {
	return s.notes.GetByID(ctx, owner, id)
}

// List returns the owner's notes in insertion order. A non-positive limit
// falls back to the default page size; a negative skip is treated as zero.
func (s *NoteService) List(ctx context.Context, owner domain.OwnerID, skip, limit int) ([]domain.Note, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	return s.notes.ListByOwner(ctx, owner, skip, limit)
}

// Update replaces the title and body of an existing note owned by the
// caller.
func (s *NoteService) Update(ctx context.Context, owner domain.OwnerID, id int64, title, body string) (*domain.Note, error) {
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	note, err := s.notes.GetByID(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	note.Title = title
	note.Body = body
	if err := s.notes.Update(ctx, owner, note); err != nil {
		return nil, err
	}
	return note, nil
}

// Delete permanently removes a note owned by the caller.
func (s *NoteService) Delete(ctx context.Context, owner domain.OwnerID, id int64) error {
	return s.notes.Delete(ctx, owner, id)
}
