package booking_controller

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/models/booking_models"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/services/booking_service"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/utils/apperrors"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/utils/httpx"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/utils/jwt_parse"
)

// BookingController exposes the booking lifecycle over HTTP.
type BookingController struct {
	Service *booking_service.BookingService
	DB      *pgxpool.Pool
}

func NewBookingController(service *booking_service.BookingService, db *pgxpool.Pool) *BookingController {
	return &BookingController{Service: service, DB: db}
}

type CreateBookingRequest struct {
	ServiceID string    `json:"service_id" binding:"required,uuid"`
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
}

func (bc *BookingController) Create(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	customerID, err := jwt_parse.UserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	serviceID, err := uuid.Parse(req.ServiceID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid service id"})
		return
	}

	booking, err := bc.Service.CreateBooking(c.Request.Context(), booking_service.CreateParams{
		CustomerID: customerID,
		ServiceID:  serviceID,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
	})
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"booking": booking})
}

func (bc *BookingController) Get(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	booking, err := booking_models.GetBookingByID(c.Request.Context(), bc.DB, bookingID)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	if !bc.canView(c, booking) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your booking"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

func (bc *BookingController) Confirm(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	booking, err := bc.Service.ConfirmBooking(c.Request.Context(), bookingID)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

type CancelBookingRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func (bc *BookingController) Cancel(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	var req CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Error(c, apperrors.Validation("cancellation reason is required"))
		return
	}

	booking, err := bc.Service.CancelBooking(c.Request.Context(), bookingID, req.Reason)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

func (bc *BookingController) Complete(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	booking, err := bc.Service.CompleteBooking(c.Request.Context(), bookingID)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// ListMine returns the authenticated customer's bookings with optional status
// filter and pagination.
func (bc *BookingController) ListMine(c *gin.Context) {
	customerID, err := jwt_parse.UserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	status := c.Query("status")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	bookings, total, err := booking_models.GetBookingsByCustomer(c.Request.Context(), bc.DB, customerID, status, page, limit)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "total": total, "page": page})
}

// ListForProvider returns a provider's bookings.
func (bc *BookingController) ListForProvider(c *gin.Context) {
	providerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid provider id"})
		return
	}

	status := c.Query("status")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	bookings, total, err := booking_models.GetBookingsByProvider(c.Request.Context(), bc.DB, providerID, status, page, limit)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "total": total, "page": page})
}

func (bc *BookingController) canView(c *gin.Context, booking *booking_models.Booking) bool {
	if jwt_parse.RoleFromContext(c) == "admin" {
		return true
	}
	userID, err := jwt_parse.UserIDFromContext(c)
	if err != nil {
		return false
	}
	return booking.CustomerID == userID || bc.ownsProvider(c, booking.ProviderID, userID)
}

func (bc *BookingController) ownsProvider(c *gin.Context, providerID, userID uuid.UUID) bool {
	var count int
	err := bc.DB.QueryRow(c.Request.Context(),
		`SELECT COUNT(*) FROM provider_profiles WHERE id = $1 AND user_id = $2`,
		providerID, userID).Scan(&count)
	return err == nil && count > 0
}
