package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mkowalski/notekeeper/internal/domain"
	"github.com/mkowalski/notekeeper/internal/service"
)

// NoteHandler handles note CRUD requests. All routes sit behind
// RequireAuth, so the owner id always comes from the resolved user in the
// request context, never from the client.
type NoteHandler struct {
	notes *service.NoteService
}

// NewNoteHandler creates a new NoteHandler.
func NewNoteHandler(notes *service.NoteService) *NoteHandler {
	return &NoteHandler{notes: notes}
}

type noteRequest struct {
	Title string `json:"title" validate:"required"`
	Body  string `json:"note"`
}

// HandleCreate stores a new note for the current user.
// POST /api/notes
// Request:  {"title":"...","note":"..."}
func (h *NoteHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	owner := currentOwner(r)

	var req noteRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, validationMessage(err))
		return
	}

	note, err := h.notes.Create(r.Context(), owner, req.Title, req.Body)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		slog.Error("create note", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	writeJSON(w, http.StatusOK, toNoteDTO(note))
}

// HandleList returns a page of the current user's notes.
// GET /api/notes?skip=0&limit=10
func (h *NoteHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	owner := currentOwner(r)

	skip, ok := queryInt(w, r, "skip", 0)
	if !ok {
		return
	}
	limit, ok := queryInt(w, r, "limit", 10)
	if !ok {
		return
	}

	notes, err := h.notes.List(r.Context(), owner, skip, limit)
	if err != nil {
		slog.Error("list notes", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	writeJSON(w, http.StatusOK, toNoteDTOs(notes))
}

// HandleGet returns a single note the current user has access to.
// GET /api/notes/{id}
func (h *NoteHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	owner := currentOwner(r)

	id, ok := noteID(w, r)
	if !ok {
		return
	}

	note, err := h.notes.Get(r.Context(), owner, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Note not found")
			return
		}
		slog.Error("get note", "error", err, "note_id", id)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	writeJSON(w, http.StatusOK, toNoteDTO(note))
}

// HandleUpdate replaces the title and body of a note owned by the current
// user.
// PUT /api/notes/{id}
func (h *NoteHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	owner := currentOwner(r)

	id, ok := noteID(w, r)
	if !ok {
		return
	}

	var req noteRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, validationMessage(err))
		return
	}

	note, err := h.notes.Update(r.Context(), owner, id, req.Title, req.Body)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "Note not found")
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			slog.Error("update note", "error", err, "note_id", id)
			writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		}
		return
	}

	writeJSON(w, http.StatusOK, toNoteDTO(note))
}

// HandleDelete permanently removes a note owned by the current user.
// DELETE /api/notes/{id}
func (h *NoteHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	owner := currentOwner(r)

	id, ok := noteID(w, r)
	if !ok {
		return
	}

	if err := h.notes.Delete(r.Context(), owner, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Note not found")
			return
		}
		slog.Error("delete note", "error", err, "note_id", id)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// currentOwner derives the owner id from the authenticated user placed in
// the context by RequireAuth.
func currentOwner(r *http.Request) domain.OwnerID {
	return domain.OwnerID(UserFromContext(r.Context()).ID)
}

// noteID parses the {id} path parameter, writing a 400 response when it is
// not an integer.
func noteID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid note id")
		return 0, false
	}
	return id, true
}

// queryInt parses an optional integer query parameter, writing a 422
// response when the value is present but not an integer.
func queryInt(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "query parameter "+name+" must be an integer")
		return 0, false
	}
	return v, true
}
