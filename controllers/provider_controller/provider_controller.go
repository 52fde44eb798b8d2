package provider_controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/models/provider_models"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/utils/apperrors"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/utils/httpx"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/utils/jwt_parse"
)

// ProviderController manages provider profiles and subscription plans.
type ProviderController struct {
	DB *pgxpool.Pool
}

func NewProviderController(db *pgxpool.Pool) *ProviderController {
	return &ProviderController{DB: db}
}

type CreateProfileRequest struct {
	BusinessName string `json:"business_name" binding:"required"`
	Description  string `json:"description"`
	City         string `json:"city"`
}

func (pc *ProviderController) CreateProfile(c *gin.Context) {
	userID, err := jwt_parse.UserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := provider_models.NewProviderProfile(userID, req.BusinessName, req.Description, req.City)
	if err != nil {
		httpx.Error(c, apperrors.Internal("failed to build provider profile", err))
		return
	}

	created, err := provider_models.CreateProviderProfile(c.Request.Context(), pc.DB, profile)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"provider": created})
}

func (pc *ProviderController) Get(c *gin.Context) {
	providerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid provider id"})
		return
	}

	provider, err := provider_models.GetProviderByID(c.Request.Context(), pc.DB, providerID)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"provider": provider})
}

func (pc *ProviderController) ListPlans(c *gin.Context) {
	plans, err := provider_models.ListSubscriptionPlans(c.Request.Context(), pc.DB)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

type ChoosePlanRequest struct {
	PlanID string `json:"plan_id" binding:"required,uuid"`
}

func (pc *ProviderController) ChoosePlan(c *gin.Context) {
	providerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid provider id"})
		return
	}

	var req ChoosePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	planID, err := uuid.Parse(req.PlanID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid plan id"})
		return
	}

	if !pc.ownsProvider(c, providerID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your provider profile"})
		return
	}

	if err := provider_models.AssignPlan(c.Request.Context(), pc.DB, providerID, planID); err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "plan assigned"})
}

func (pc *ProviderController) ownsProvider(c *gin.Context, providerID uuid.UUID) bool {
	if jwt_parse.RoleFromContext(c) == "admin" {
		return true
	}
	userID, err := jwt_parse.UserIDFromContext(c)
	if err != nil {
		return false
	}
	var count int
	err = pc.DB.QueryRow(c.Request.Context(),
		`SELECT COUNT(*) FROM provider_profiles WHERE id = $1 AND user_id = $2`,
		providerID, userID).Scan(&count)
	return err == nil && count > 0
}
