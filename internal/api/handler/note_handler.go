package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/inotebook/backend/internal/core/domain"
	"github.com/inotebook/backend/internal/core/ports"
)

// NoteHandler serves the /api/notes routes. All of them sit behind
// middleware.FetchUser.
type NoteHandler struct {
	service ports.NoteService
}

func NewNoteHandler(service ports.NoteService) *NoteHandler {
	return &NoteHandler{service: service}
}

type notesResponse struct {
	Success bool           `json:"success"`
	Notes   []*domain.Note `json:"notes"`
}

type noteResponse struct {
	Success bool         `json:"success"`
	Msg     string       `json:"msg,omitempty"`
	Note    *domain.Note `json:"note"`
}

// FetchAll lists the caller's notes.
//
// @Summary      Fetch all notes
// @Tags         notes
// @Produce      json
// @Security     AuthToken
// @Success      200  {object}  notesResponse
// @Failure      401  {object}  map[string]any
// @Router       /api/notes/fetchallnotes [get]
func (h *NoteHandler) FetchAll(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	notes, err := h.service.FetchAll(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, notesResponse{Success: true, Notes: notes})
}

// Add creates a note for the caller.
//
// @Summary      Add a note
// @Tags         notes
// @Accept       json
// @Produce      json
// @Security     AuthToken
// @Param        body  body      ports.NoteInput  true  "Note"
// @Success      200   {object}  noteResponse
// @Failure      400   {object}  map[string]any
// @Failure      401   {object}  map[string]any
// @Router       /api/notes/addnote [post]
func (h *NoteHandler) Add(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req ports.NoteInput
	if err := c.Bind(&req); err != nil {
		return invalidPayload()
	}

	note, err := h.service.Add(c.Request().Context(), userID, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, noteResponse{Success: true, Note: note})
}

// Update changes the provided fields of one of the caller's notes.
//
// @Summary      Update a note
// @Tags         notes
// @Accept       json
// @Produce      json
// @Security     AuthToken
// @Param        id    path      string                 true  "Note id"
// @Param        body  body      ports.NoteUpdateInput  true  "Fields to change"
// @Success      200   {object}  noteResponse
// @Failure      400   {object}  map[string]any
// @Failure      401   {object}  map[string]any
// @Failure      404   {object}  map[string]any
// @Router       /api/notes/updatenote/{id} [put]
func (h *NoteHandler) Update(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req ports.NoteUpdateInput
	if err := c.Bind(&req); err != nil {
		return invalidPayload()
	}

	note, err := h.service.Update(c.Request().Context(), userID, c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, noteResponse{Success: true, Note: note})
}

// Delete removes one of the caller's notes.
//
// @Summary      Delete a note
// @Tags         notes
// @Produce      json
// @Security     AuthToken
// @Param        id   path      string  true  "Note id"
// @Success      200  {object}  noteResponse
// @Failure      401  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Router       /api/notes/deletenote/{id} [delete]
func (h *NoteHandler) Delete(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	note, err := h.service.Delete(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, noteResponse{Success: true, Msg: "Note has been deleted", Note: note})
}
