package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mkowalski/notekeeper/internal/domain"
)

// NoteRepository implements domain.NoteRepository using SQLite. Every query
// carries the owner predicate, so notes belonging to other users are
// indistinguishable from absent ones.
type NoteRepository struct {
	db *sql.DB
}

var _ domain.NoteRepository = (*NoteRepository)(nil)

// NewNoteRepository creates a new SQLite-backed NoteRepository.
func NewNoteRepository(db *DB) *NoteRepository {
	return &NoteRepository{db: db.sqlDB}
}

func (r *NoteRepository) Create(ctx context.Context, owner domain.OwnerID, note *domain.Note) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO notes (title, body, author_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		note.Title, note.Body, int64(owner), now, now,
	)
	if err != nil {
		return fmt.Errorf("insert note: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}

	note.ID = id
	note.AuthorID = int64(owner)
	note.CreatedAt = now
	note.UpdatedAt = now
	return nil
}

func (r *NoteRepository) GetByID(ctx context.Context, owner domain.OwnerID, id int64) (*domain.Note, error) {
	note := &domain.Note{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, title, body, author_id, created_at, updated_at
		 FROM notes WHERE id = ? AND author_id = ?`, id, int64(owner),
	).Scan(&note.ID, &note.Title, &note.Body, &note.AuthorID, &note.CreatedAt, &note.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query note by id: %w", err)
	}
	return note, nil
}

func (r *NoteRepository) ListByOwner(ctx context.Context, owner domain.OwnerID, offset, limit int) ([]domain.Note, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, body, author_id, created_at, updated_at
		 FROM notes WHERE author_id = ?
		 ORDER BY id
		 LIMIT ? OFFSET ?`, int64(owner), limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("query notes by owner: %w", err)
	}
	defer rows.Close()

	var notes []domain.Note
	for rows.Next() {
		var n domain.Note
		if err := rows.Scan(&n.ID, &n.Title, &n.Body, &n.AuthorID, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notes: %w", err)
	}
	return notes, nil
}

func (r *NoteRepository) Update(ctx context.Context, owner domain.OwnerID, note *domain.Note) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE notes SET title = ?, body = ?, updated_at = ?
		 WHERE id = ? AND author_id = ?`,
		note.Title, note.Body, now, note.ID, int64(owner),
	)
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}

	note.AuthorID = int64(owner)
	note.UpdatedAt = now
	return nil
}

func (r *NoteRepository) Delete(ctx context.Context, owner domain.OwnerID, id int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM notes WHERE id = ? AND author_id = ?`, id, int64(owner),
	)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
