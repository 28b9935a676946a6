package handler

import (
	"github.com/labstack/echo/v4"

	"comoresmarket/internal/usecase"
	"comoresmarket/pkg/response"
)

type ConversationHandler struct {
	messageUseCase *usecase.MessageUseCase
}

func NewConversationHandler(messageUseCase *usecase.MessageUseCase) *ConversationHandler {
	return &ConversationHandler{
		messageUseCase: messageUseCase,
	}
}

type sendMessageRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}

func (h *ConversationHandler) ListConversations(c echo.Context) error {
	userID := c.Get("uid").(string)

	conversations, err := h.messageUseCase.ListConversations(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, conversations)
}

// OpenConversation returns the thread and marks the incoming messages read.
func (h *ConversationHandler) OpenConversation(c echo.Context) error {
	userID := c.Get("uid").(string)

	conversation, err := h.messageUseCase.OpenConversation(c.Request().Context(), userID, c.Param("productId"), c.Param("userId"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, conversation)
}

func (h *ConversationHandler) MarkRead(c echo.Context) error {
	userID := c.Get("uid").(string)

	updated, err := h.messageUseCase.MarkConversationRead(c.Request().Context(), userID, c.Param("productId"), c.Param("userId"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]int64{
		"updated": updated,
	})
}

func (h *ConversationHandler) SendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)
	message, err := h.messageUseCase.Send(c.Request().Context(), userID, usecase.SendMessageInput{
		ProductID:  c.Param("productId"),
		ReceiverID: c.Param("userId"),
		Content:    req.Content,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

func (h *ConversationHandler) SendImage(c echo.Context) error {
	upload, err := openImage(c, "file")
	if err != nil {
		return response.Error(c, err)
	}
	defer upload.Close()

	userID := c.Get("uid").(string)
	message, err := h.messageUseCase.SendImage(c.Request().Context(), userID, c.Param("productId"), c.Param("userId"), upload.file, upload.contentType)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

func (h *ConversationHandler) DeleteConversation(c echo.Context) error {
	userID := c.Get("uid").(string)

	if err := h.messageUseCase.DeleteConversation(c.Request().Context(), userID, c.Param("productId"), c.Param("userId")); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"message": "Conversation deleted",
	})
}

func (h *ConversationHandler) UnreadCount(c echo.Context) error {
	userID := c.Get("uid").(string)

	count, err := h.messageUseCase.UnreadCount(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]int64{
		"unread_count": count,
	})
}
