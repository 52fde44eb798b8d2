package payment_controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/models/payment_models"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/models/transaction_models"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/models/user_models"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/services/settlement_service"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/utils/httpx"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/utils/jwt_parse"
)

// PaymentController exposes payment intents, refunds, saved payment methods
// and the transaction history.
type PaymentController struct {
	Service *settlement_service.SettlementService
	DB      *pgxpool.Pool
}

func NewPaymentController(service *settlement_service.SettlementService, db *pgxpool.Pool) *PaymentController {
	return &PaymentController{Service: service, DB: db}
}

type CreateIntentRequest struct {
	BookingID string `json:"booking_id" binding:"required,uuid"`
}

func (pc *PaymentController) CreateIntent(c *gin.Context) {
	var req CreateIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	payment, clientSecret, err := pc.Service.CreatePaymentIntent(c.Request.Context(), bookingID)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"payment": payment, "client_secret": clientSecret})
}

func (pc *PaymentController) Get(c *gin.Context) {
	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment id"})
		return
	}

	payment, err := payment_models.GetPaymentByID(c.Request.Context(), pc.DB, paymentID)
	if err != nil {
		httpx.Error(c, err)
		return
	}

	userID, _ := jwt_parse.UserIDFromContext(c)
	if payment.CustomerID != userID && jwt_parse.RoleFromContext(c) != "admin" {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your payment"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": payment})
}

type RefundRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

func (pc *PaymentController) Refund(c *gin.Context) {
	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment id"})
		return
	}

	var req RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payment, err := pc.Service.Refund(c.Request.Context(), paymentID, req.Amount)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment": payment})
}

// Transactions lists the authenticated user's ledger entries.
func (pc *PaymentController) Transactions(c *gin.Context) {
	userID, err := jwt_parse.UserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	limit, offset := httpx.Pagination(c)
	transactions, err := transaction_models.ListTransactionsByUser(c.Request.Context(), pc.DB, userID, limit, offset)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": transactions})
}

type AddPaymentMethodRequest struct {
	ProcessorToken string `json:"processor_token" binding:"required"`
	Brand          string `json:"brand" binding:"required"`
	Last4          string `json:"last4" binding:"required,len=4"`
	ExpMonth       int    `json:"exp_month" binding:"required,min=1,max=12"`
	ExpYear        int    `json:"exp_year" binding:"required"`
}

func (pc *PaymentController) AddPaymentMethod(c *gin.Context) {
	userID, err := jwt_parse.UserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req AddPaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pm, err := user_models.NewPaymentMethod(userID, req.ProcessorToken, req.Brand, req.Last4, req.ExpMonth, req.ExpYear)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	created, err := user_models.CreatePaymentMethod(c.Request.Context(), pc.DB, pm)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"payment_method": created})
}

func (pc *PaymentController) ListPaymentMethods(c *gin.Context) {
	userID, err := jwt_parse.UserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	methods, err := user_models.ListPaymentMethods(c.Request.Context(), pc.DB, userID)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment_methods": methods})
}

func (pc *PaymentController) DeletePaymentMethod(c *gin.Context) {
	userID, err := jwt_parse.UserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	methodID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment method id"})
		return
	}

	if err := user_models.DeletePaymentMethod(c.Request.Context(), pc.DB, userID, methodID); err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "payment method deleted"})
}
