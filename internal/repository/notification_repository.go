package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/rentease/rent-ledger/internal/domain"
)

type notificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

// Insert is the dedup gate: the unique dedup_key constraint makes repeated
// sweep runs see zero rows affected and skip the send.
func (r *notificationRepository) Insert(ctx context.Context, entry *domain.NotificationLogEntry) (bool, error) {
	query := `
		INSERT INTO notifications (id, dedup_key, landlord_id, recipient_type, recipient_id,
			recipient_contact, channel, type, subject, body, status, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (dedup_key) DO NOTHING
	`

	res, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.DedupKey,
		entry.LandlordID,
		entry.RecipientType,
		entry.RecipientID,
		entry.RecipientContact,
		entry.Channel,
		entry.Type,
		entry.Subject,
		entry.Body,
		entry.Status,
		entry.SentAt,
	)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
