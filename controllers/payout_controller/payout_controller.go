package payout_controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/models/payout_models"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/services/settlement_service"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/utils/httpx"
)

// PayoutController exposes admin-triggered payout batches and payout queries.
type PayoutController struct {
	Service *settlement_service.SettlementService
	DB      *pgxpool.Pool
}

func NewPayoutController(service *settlement_service.SettlementService, db *pgxpool.Pool) *PayoutController {
	return &PayoutController{Service: service, DB: db}
}

type CreateBatchRequest struct {
	ProviderID string     `json:"provider_id" binding:"required,uuid"`
	Cutoff     *time.Time `json:"cutoff,omitempty"`
}

// CreateBatch batches a provider's settled payments into one payout. Cutoff
// defaults to now.
func (pc *PayoutController) CreateBatch(c *gin.Context) {
	var req CreateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	providerID, err := uuid.Parse(req.ProviderID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid provider id"})
		return
	}

	cutoff := time.Now().UTC()
	if req.Cutoff != nil {
		cutoff = *req.Cutoff
	}

	payout, err := pc.Service.BatchPayout(c.Request.Context(), providerID, cutoff)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"payout": payout})
}

func (pc *PayoutController) Get(c *gin.Context) {
	payoutID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payout id"})
		return
	}

	payout, err := payout_models.GetPayoutByID(c.Request.Context(), pc.DB, payoutID)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payout": payout})
}

func (pc *PayoutController) ListForProvider(c *gin.Context) {
	providerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid provider id"})
		return
	}

	limit, offset := httpx.Pagination(c)
	payouts, err := payout_models.ListPayoutsByProvider(c.Request.Context(), pc.DB, providerID, limit, offset)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payouts": payouts})
}

// MarkProcessed records that the transfer went out.
func (pc *PayoutController) MarkProcessed(c *gin.Context) {
	payoutID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payout id"})
		return
	}

	if err := payout_models.MarkPayoutProcessed(c.Request.Context(), pc.DB, payoutID); err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "payout marked processed"})
}
