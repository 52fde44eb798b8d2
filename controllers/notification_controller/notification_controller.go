package notification_controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/models/notification_models"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/utils/httpx"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/utils/jwt_parse"
)

// NotificationController exposes the in-app notification feed and device
// token registration.
type NotificationController struct {
	DB *pgxpool.Pool
}

func NewNotificationController(db *pgxpool.Pool) *NotificationController {
	return &NotificationController{DB: db}
}

func (nc *NotificationController) List(c *gin.Context) {
	userID, err := jwt_parse.UserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit, offset := httpx.Pagination(c)
	unreadOnly := c.Query("unread") == "true"

	notifications, err := notification_models.ListNotificationsByUser(c.Request.Context(), nc.DB, userID, unreadOnly, limit, offset)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

func (nc *NotificationController) MarkRead(c *gin.Context) {
	userID, err := jwt_parse.UserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	notificationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
		return
	}

	if err := notification_models.MarkNotificationRead(c.Request.Context(), nc.DB, userID, notificationID); err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "notification marked read"})
}

type RegisterDeviceTokenRequest struct {
	Token    string `json:"token" binding:"required"`
	Platform string `json:"platform" binding:"required,oneof=ios android web"`
}

func (nc *NotificationController) RegisterDeviceToken(c *gin.Context) {
	userID, err := jwt_parse.UserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req RegisterDeviceTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := notification_models.RegisterDeviceToken(c.Request.Context(), nc.DB, userID, req.Token, req.Platform)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"device_token": token})
}

type DeleteDeviceTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

func (nc *NotificationController) DeleteDeviceToken(c *gin.Context) {
	userID, err := jwt_parse.UserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req DeleteDeviceTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := notification_models.DeleteDeviceToken(c.Request.Context(), nc.DB, userID, req.Token); err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "device token removed"})
}
