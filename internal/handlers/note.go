package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/taskhive/backend/internal/middleware"
	"github.com/taskhive/backend/internal/services"
	"github.com/taskhive/backend/pkg/response"
	"gorm.io/gorm"
)

type NoteHandler struct {
	noteService *services.NoteService
}

func NewNoteHandler(db *gorm.DB) *NoteHandler {
	return &NoteHandler{
		noteService: services.NewNoteService(db),
	}
}

type CreateNoteRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content"`
}

type UpdateNoteRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

// ListByProject returns a project's notes
// GET /api/projects/:id/notes
func (h *NoteHandler) ListByProject(c *gin.Context) {
	projectID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}

	notes, err := h.noteService.ListByProject(uint(projectID), middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, notes)
}

// Create creates a note in a project
// POST /api/projects/:id/notes
func (h *NoteHandler) Create(c *gin.Context) {
	projectID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}

	var req CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	note, err := h.noteService.Create(uint(projectID), middleware.GetUserID(c), req.Title, req.Content)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, note)
}

// GetByID returns a note by ID
// GET /api/notes/:id
func (h *NoteHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid note id")
		return
	}

	note, err := h.noteService.GetByID(uint(id), middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, note)
}

// Update updates a note
// PUT /api/notes/:id
func (h *NoteHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid note id")
		return
	}

	var req UpdateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	note, err := h.noteService.Update(uint(id), middleware.GetUserID(c), req.Title, req.Content)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, note)
}

// Delete archives a note
// DELETE /api/notes/:id
func (h *NoteHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid note id")
		return
	}

	if err := h.noteService.Archive(uint(id), middleware.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"archived": true})
}
