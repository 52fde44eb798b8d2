package service_controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/models/service_models"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/utils/httpx"
)

// ServiceController manages a provider's bookable catalog.
type ServiceController struct {
	DB *pgxpool.Pool
}

func NewServiceController(db *pgxpool.Pool) *ServiceController {
	return &ServiceController{DB: db}
}

type CreateServiceRequest struct {
	ProviderID      string `json:"provider_id" binding:"required,uuid"`
	Name            string `json:"name" binding:"required"`
	Description     string `json:"description"`
	DurationMinutes int    `json:"duration_minutes" binding:"required,gt=0"`
	Price           int64  `json:"price" binding:"required,gt=0"`
	Currency        string `json:"currency" binding:"required,len=3"`
}

func (sc *ServiceController) Create(c *gin.Context) {
	var req CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	providerID, err := uuid.Parse(req.ProviderID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid provider id"})
		return
	}

	svc, err := service_models.NewService(providerID, req.Name, req.Description, req.DurationMinutes, req.Price, req.Currency)
	if err != nil {
		httpx.Error(c, err)
		return
	}

	created, err := service_models.CreateService(c.Request.Context(), sc.DB, svc)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"service": created})
}

func (sc *ServiceController) Get(c *gin.Context) {
	serviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid service id"})
		return
	}

	svc, err := service_models.GetServiceByID(c.Request.Context(), sc.DB, serviceID)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"service": svc})
}

func (sc *ServiceController) ListForProvider(c *gin.Context) {
	providerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid provider id"})
		return
	}

	services, err := service_models.ListServicesByProvider(c.Request.Context(), sc.DB, providerID)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"services": services})
}

type SetActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

func (sc *ServiceController) SetActive(c *gin.Context) {
	serviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid service id"})
		return
	}

	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := service_models.SetServiceActive(c.Request.Context(), sc.DB, serviceID, *req.Active); err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "service updated"})
}
