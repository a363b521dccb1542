package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codelenshq/codelens/internal/middleware"
	"github.com/codelenshq/codelens/internal/services"
)

type ChatHandler struct {
	projectService *services.ProjectService
	chatService    *services.ChatService
}

func NewChatHandler(projectService *services.ProjectService, chatService *services.ChatService) *ChatHandler {
	return &ChatHandler{
		projectService: projectService,
		chatService:    chatService,
	}
}

type chatRequest struct {
	Message string `json:"message" binding:"required"`
}

// Ask answers a question about the project
func (h *ChatHandler) Ask(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	project, err := h.projectService.Get(userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	answer, err := h.chatService.Ask(c.Request.Context(), userID.String(), project.ID.String(), req.Message)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": answer.Message,
		"sources": answer.Sources,
	})
}

// History returns the project's full conversation, oldest first
func (h *ChatHandler) History(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	project, err := h.projectService.Get(userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	messages, err := h.chatService.History(project.ID.String())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}
