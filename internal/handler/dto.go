package handler

import "github.com/mkowalski/notekeeper/internal/domain"

// UserDTO is the JSON representation of a user.
type UserDTO struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

func toUserDTO(u *domain.User) UserDTO {
	return UserDTO{
		ID:    u.ID,
		Email: u.Email,
	}
}

// NoteDTO is the JSON representation of a note. The body travels under the
// "note" key.
type NoteDTO struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Body     string `json:"note"`
	AuthorID int64  `json:"author_id"`
}

func toNoteDTO(n *domain.Note) NoteDTO {
	return NoteDTO{
		ID:       n.ID,
		Title:    n.Title,
		Body:     n.Body,
		AuthorID: n.AuthorID,
	}
}

func toNoteDTOs(notes []domain.Note) []NoteDTO {
	dtos := make([]NoteDTO, len(notes))
	for i := range notes {
		dtos[i] = toNoteDTO(&notes[i])
	}
	return dtos
}

// TokenDTO is the JSON representation of an issued access token.
type TokenDTO struct {
	AccessToken string `json:"access_token"`
}
