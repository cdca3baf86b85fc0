package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/questline/questline/core"
	"github.com/questline/questline/service"
)

// QuestHandlers contains HTTP handlers for the authenticated quest API.
// The owner for every call comes from the session middleware, never from
// the request body.
type QuestHandlers struct {
	questService *service.QuestService
}

// NewQuestHandlers creates new quest handlers.
func NewQuestHandlers(questService *service.QuestService) *QuestHandlers {
	return &QuestHandlers{questService: questService}
}

// Create handles POST /api/quests.
func (h *QuestHandlers) Create(c *gin.Context) {
	var req struct {
		Title       string   `json:"title" binding:"required"`
		Description string   `json:"description"`
		Objectives  []string `json:"objectives"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	quest, err := h.questService.CreateQuest(c.Request.Context(), sessionUser(c), req.Title, req.Description, req.Objectives)
	if err != nil {
		writeQuestError(c, err)
		return
	}

	c.JSON(http.StatusCreated, quest)
}

// List handles GET /api/quests.
func (h *QuestHandlers) List(c *gin.Context) {
	quests, err := h.questService.ListQuests(c.Request.Context(), sessionUser(c))
	if err != nil {
		writeQuestError(c, err)
		return
	}
	if quests == nil {
		quests = []*core.Quest{}
	}

	c.JSON(http.StatusOK, gin.H{"quests": quests})
}

// Get handles GET /api/quests/:id.
func (h *QuestHandlers) Get(c *gin.Context) {
	quest, err := h.questService.GetQuest(c.Request.Context(), sessionUser(c), c.Param("id"))
	if err != nil {
		writeQuestError(c, err)
		return
	}

	c.JSON(http.StatusOK, quest)
}

// Update handles PATCH /api/quests/:id. Absent fields stay untouched.
func (h *QuestHandlers) Update(c *gin.Context) {
	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Status      *string `json:"status"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	quest, err := h.questService.UpdateQuest(c.Request.Context(), sessionUser(c), c.Param("id"), service.QuestUpdate{
		Title:       req.Title,
		Description: req.Description,
		Status:      (*core.QuestStatus)(req.Status),
	})
	if err != nil {
		writeQuestError(c, err)
		return
	}

	c.JSON(http.StatusOK, quest)
}

// Delete handles DELETE /api/quests/:id.
func (h *QuestHandlers) Delete(c *gin.Context) {
	if err := h.questService.DeleteQuest(c.Request.Context(), sessionUser(c), c.Param("id")); err != nil {
		writeQuestError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// AddObjective handles POST /api/quests/:id/objectives.
func (h *QuestHandlers) AddObjective(c *gin.Context) {
	var req struct {
		Title string `json:"title" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	quest, err := h.questService.AddObjective(c.Request.Context(), sessionUser(c), c.Param("id"), req.Title)
	if err != nil {
		writeQuestError(c, err)
		return
	}

	c.JSON(http.StatusOK, quest)
}

// CompleteObjective handles POST /api/quests/:id/objectives/:objectiveID/complete.
func (h *QuestHandlers) CompleteObjective(c *gin.Context) {
	quest, err := h.questService.CompleteObjective(c.Request.Context(), sessionUser(c), c.Param("id"), c.Param("objectiveID"))
	if err != nil {
		writeQuestError(c, err)
		return
	}

	c.JSON(http.StatusOK, quest)
}

// RemoveObjective handles DELETE /api/quests/:id/objectives/:objectiveID.
func (h *QuestHandlers) RemoveObjective(c *gin.Context) {
	quest, err := h.questService.RemoveObjective(c.Request.Context(), sessionUser(c), c.Param("id"), c.Param("objectiveID"))
	if err != nil {
		writeQuestError(c, err)
		return
	}

	c.JSON(http.StatusOK, quest)
}

// writeQuestError maps quest service errors onto status codes.
func writeQuestError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrQuestNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Quest not found"})
	case errors.Is(err, core.ErrObjectiveNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Objective not found"})
	case errors.Is(err, core.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quest status"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}
