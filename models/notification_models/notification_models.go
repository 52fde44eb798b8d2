package notification_models

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/logger"
	"github.com/Project-Professional-Practice-DHR/local-services-directory-sub002/utils/apperrors"
)

type NotificationType string

const (
	NotifBookingCreated   NotificationType = "booking_created"
	NotifBookingConfirmed NotificationType = "booking_confirmed"
	NotifBookingCanceled  NotificationType = "booking_canceled"
	NotifBookingCompleted NotificationType = "booking_completed"
	NotifPaymentReceipt   NotificationType = "payment_receipt"
	NotifPayoutNotice     NotificationType = "payout_notice"
	NotifNewMessage       NotificationType = "new_message"
	NotifNewReview        NotificationType = "new_review"
)

// Notification is the in-app record of an outbound email/SMS or in-app alert.
type Notification struct {
	ID        uuid.UUID        `json:"id"`
	UserID    uuid.UUID        `json:"user_id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message,omitempty"`
	Channel   string           `json:"channel"` // email | sms | in_app
	IsRead    bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}

func NewNotification(userID uuid.UUID, notifType NotificationType, title, message, channel string) (*Notification, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID for notification: %w", err)
	}
	return &Notification{
		ID:        id,
		UserID:    userID,
		Type:      notifType,
		Title:     title,
		Message:   message,
		Channel:   channel,
		CreatedAt: time.Now().UTC(),
	}, nil
}

func CreateNotification(ctx context.Context, db *pgxpool.Pool, n *Notification) (*Notification, error) {
	_, err := db.Exec(ctx, `
		INSERT INTO notifications (id, user_id, type, title, message, channel, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		n.ID, n.UserID, n.Type, n.Title, n.Message, n.Channel, n.IsRead, n.CreatedAt,
	)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to insert notification for user %s: %v", n.UserID, err)
		return nil, apperrors.Internal("failed to create notification", err)
	}
	return n, nil
}

func ListNotificationsByUser(ctx context.Context, db *pgxpool.Pool, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]Notification, error) {
	query := `
		SELECT id, user_id, type, title, message, channel, is_read, created_at
		FROM notifications
		WHERE user_id = $1`
	if unreadOnly {
		query += " AND NOT is_read"
	}
	query += " ORDER BY created_at DESC LIMIT $2 OFFSET $3"

	rows, err := db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to list notifications for user %s: %v", userID, err)
		return nil, apperrors.Internal("failed to list notifications", err)
	}
	defer rows.Close()

	var notifications []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.Channel, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, apperrors.Internal("failed to scan notification", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, nil
}

func MarkNotificationRead(ctx context.Context, db *pgxpool.Pool, userID, notificationID uuid.UUID) error {
	cmdTag, err := db.Exec(ctx, `
		UPDATE notifications SET is_read = TRUE
		WHERE id = $1 AND user_id = $2`,
		notificationID, userID,
	)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to mark notification %s read: %v", notificationID, err)
		return apperrors.Internal("failed to mark notification read", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NotFound("notification not found")
	}
	return nil
}
