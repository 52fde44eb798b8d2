package message_controller

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/clients"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/logger"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/models/message_models"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/services/notification_service"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/utils/apperrors"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/utils/httpx"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/utils/jwt_parse"
)

const maxAttachmentBytes = 10 << 20 // 10 MiB

// MessageController handles in-app messaging with optional attachments.
type MessageController struct {
	DB         *pgxpool.Pool
	Storage    clients.ObjectStorage
	Dispatcher *notification_service.Dispatcher
}

func NewMessageController(db *pgxpool.Pool, storage clients.ObjectStorage, dispatcher *notification_service.Dispatcher) *MessageController {
	return &MessageController{DB: db, Storage: storage, Dispatcher: dispatcher}
}

// Send accepts multipart form data: "to" (recipient user id), "content" and an
// optional "attachment" file uploaded to object storage.
func (mc *MessageController) Send(c *gin.Context) {
	senderID, err := jwt_parse.UserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	receiverID, err := uuid.Parse(c.PostForm("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipient id"})
		return
	}
	if receiverID == senderID {
		httpx.Error(c, apperrors.Validation("cannot message yourself"))
		return
	}

	content := c.PostForm("content")
	var attachmentKey, attachmentURL *string

	if fileHeader, err := c.FormFile("attachment"); err == nil {
		if mc.Storage == nil {
			httpx.Error(c, apperrors.InvalidState("attachments are not enabled"))
			return
		}
		if fileHeader.Size > maxAttachmentBytes {
			httpx.Error(c, apperrors.Validation("attachment exceeds size limit"))
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			httpx.Error(c, apperrors.Internal("failed to read attachment", err))
			return
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, maxAttachmentBytes))
		if err != nil {
			httpx.Error(c, apperrors.Internal("failed to read attachment", err))
			return
		}

		obj, err := mc.Storage.Put(c.Request.Context(), data, fileHeader.Header.Get("Content-Type"))
		if err != nil {
			httpx.Error(c, apperrors.External("attachment upload failed", err))
			return
		}
		attachmentKey, attachmentURL = &obj.Key, &obj.URL
	}

	if content == "" && attachmentKey == nil {
		httpx.Error(c, apperrors.Validation("message needs content or an attachment"))
		return
	}

	ctx := c.Request.Context()
	conv, err := message_models.GetOrCreateConversation(ctx, mc.DB, senderID, receiverID)
	if err != nil {
		httpx.Error(c, err)
		return
	}

	msg := &message_models.Message{
		ConversationID: conv.ID,
		SenderID:       senderID,
		ReceiverID:     receiverID,
		Content:        content,
		AttachmentKey:  attachmentKey,
		AttachmentURL:  attachmentURL,
	}
	created, err := message_models.CreateMessage(ctx, mc.DB, msg)
	if err != nil {
		httpx.Error(c, err)
		return
	}

	if mc.Dispatcher != nil {
		go func() {
			nctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := mc.Dispatcher.NotifyNewMessage(nctx, receiverID, senderID); err != nil {
				logger.WarnLogger.Warnf("Message notification failed: %v", err)
			}
		}()
	}

	c.JSON(http.StatusCreated, gin.H{"message": created})
}

func (mc *MessageController) ListConversations(c *gin.Context) {
	userID, err := jwt_parse.UserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit, offset := httpx.Pagination(c)
	conversations, err := message_models.ListConversations(c.Request.Context(), mc.DB, userID, limit, offset)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversations": conversations})
}

func (mc *MessageController) ListMessages(c *gin.Context) {
	userID, err := jwt_parse.UserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}
	if !mc.inConversation(c, conversationID, userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your conversation"})
		return
	}

	limit, offset := httpx.Pagination(c)
	messages, err := message_models.ListMessages(c.Request.Context(), mc.DB, conversationID, limit, offset)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

func (mc *MessageController) MarkRead(c *gin.Context) {
	userID, err := jwt_parse.UserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation id"})
		return
	}

	updated, err := message_models.MarkConversationRead(c.Request.Context(), mc.DB, conversationID, userID)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"marked_read": updated})
}

func (mc *MessageController) UnreadCount(c *gin.Context) {
	userID, err := jwt_parse.UserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	count, err := message_models.CountUnread(c.Request.Context(), mc.DB, userID)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": count})
}

func (mc *MessageController) inConversation(c *gin.Context, conversationID, userID uuid.UUID) bool {
	var count int
	err := mc.DB.QueryRow(c.Request.Context(),
		`SELECT COUNT(*) FROM conversations WHERE id = $1 AND (user_a = $2 OR user_b = $2)`,
		conversationID, userID).Scan(&count)
	return err == nil && count > 0
}
