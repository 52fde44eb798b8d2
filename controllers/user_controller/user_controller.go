package user_controller

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/logger"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/models/user_models"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/utils/apperrors"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/utils/httpx"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/utils/jwt_parse"
)

const accessTokenTTL = 60 * time.Minute

// UserController handles registration, login and profile reads.
type UserController struct {
	DB *pgxpool.Pool
}

func NewUserController(db *pgxpool.Pool) *UserController {
	return &UserController{DB: db}
}

type RegisterRequest struct {
	Email     string  `json:"email" binding:"required,email"`
	Password  string  `json:"password" binding:"required,min=8"`
	FirstName string  `json:"first_name" binding:"required"`
	LastName  string  `json:"last_name" binding:"required"`
	Phone     *string `json:"phone,omitempty"`
	Role      string  `json:"role" binding:"omitempty,oneof=customer provider"`
}

func (uc *UserController) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	role := req.Role
	if role == "" {
		role = "customer"
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := user_models.GetUserByEmail(c.Request.Context(), uc.DB, email); err == nil {
		httpx.Error(c, apperrors.Validation("email already registered"))
		return
	}

	user, err := user_models.NewUser(email, req.Password, req.FirstName, req.LastName, role)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to build user: %v", err)
		httpx.Error(c, apperrors.Internal("failed to register user", err))
		return
	}
	user.Phone = req.Phone

	created, err := user_models.CreateUser(c.Request.Context(), uc.DB, user)
	if err != nil {
		httpx.Error(c, err)
		return
	}

	token, err := jwt_parse.GenerateToken(created.ID, created.Role, accessTokenTTL)
	if err != nil {
		httpx.Error(c, apperrors.Internal("failed to issue token", err))
		return
	}

	logger.InfoLogger.Infof("User %s registered as %s", created.ID, created.Role)
	c.JSON(http.StatusCreated, gin.H{"user": created, "access_token": token})
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (uc *UserController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := user_models.GetUserByEmail(c.Request.Context(), uc.DB, email)
	if err != nil || !user.CheckPassword(req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}

	token, err := jwt_parse.GenerateToken(user.ID, user.Role, accessTokenTTL)
	if err != nil {
		httpx.Error(c, apperrors.Internal("failed to issue token", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user, "access_token": token})
}

func (uc *UserController) Me(c *gin.Context) {
	userID, err := jwt_parse.UserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	user, err := user_models.GetUserByID(c.Request.Context(), uc.DB, userID)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
