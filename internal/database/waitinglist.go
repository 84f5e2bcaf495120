package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ayushbirla71/restaurant-backend/internal/models"
)

const waitingColumns = `id, customer_name, mobile, email, people_count,
    preferred_table_size, booking_type, booking_date, booking_time_slot,
    priority, status, estimated_wait_minutes, notified_at, created_at, updated_at`

func scanWaitingEntry(row interface{ Scan(...any) error }) (*models.WaitingListEntry, error) {
	var e models.WaitingListEntry
	var email, bookingDate, bookingSlot sql.NullString
	var estimatedWait sql.NullInt64
	var notifiedAt sql.NullTime

	err := row.Scan(
		&e.ID, &e.CustomerName, &e.Mobile, &email, &e.PeopleCount,
		&e.PreferredTableSize, &e.BookingType, &bookingDate, &bookingSlot,
		&e.Priority, &e.Status, &estimatedWait, &notifiedAt, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	e.Email = email.String
	e.BookingDate = bookingDate.String
	e.BookingTimeSlot = bookingSlot.String
	if estimatedWait.Valid {
		mins := int(estimatedWait.Int64)
		e.EstimatedWaitMinutes = &mins
	}
	if notifiedAt.Valid {
		e.NotifiedAt = &notifiedAt.Time
	}
	return &e, nil
}

// CreateWaitingEntry inserts a waiting list entry, assigning an id when absent.
func (db *DB) CreateWaitingEntry(ctx context.Context, e *models.WaitingListEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Status == "" {
		e.Status = models.WaitingWaiting
	}
	now := time.Now()
	e.CreatedAt = now
	e.UpdatedAt = now

	var estimatedWait sql.NullInt64
	if e.EstimatedWaitMinutes != nil {
		estimatedWait = sql.NullInt64{Int64: int64(*e.EstimatedWaitMinutes), Valid: true}
	}

	_, err := db.ExecContext(ctx, `
        INSERT INTO waiting_list (id, customer_name, mobile, email, people_count,
            preferred_table_size, booking_type, booking_date, booking_time_slot,
            priority, status, estimated_wait_minutes, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.CustomerName, e.Mobile, e.Email, e.PeopleCount,
		e.PreferredTableSize, e.BookingType, nullString(e.BookingDate), nullString(e.BookingTimeSlot),
		e.Priority, e.Status, estimatedWait, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create waiting entry: %w", err)
	}
	return nil
}

// GetWaitingEntry returns an entry by id, or sql.ErrNoRows.
func (db *DB) GetWaitingEntry(ctx context.Context, id string) (*models.WaitingListEntry, error) {
	row := db.QueryRowContext(ctx,
		"SELECT "+waitingColumns+" FROM waiting_list WHERE id = ?", id)
	return scanWaitingEntry(row)
}

// ListActiveWaiting returns WAITING/NOTIFIED entries ordered by priority then
// age. A non-empty date filters to entries requesting that date.
func (db *DB) ListActiveWaiting(ctx context.Context, date string) ([]models.WaitingListEntry, error) {
	query := `
        SELECT ` + waitingColumns + ` FROM waiting_list
        WHERE status IN (?, ?)`
	args := []any{models.WaitingWaiting, models.WaitingNotified}
	if date != "" {
		query += " AND booking_date = ?"
		args = append(args, date)
	}
	query += " ORDER BY priority DESC, created_at ASC"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list waiting entries: %w", err)
	}
	defer rows.Close()

	var entries []models.WaitingListEntry
	for rows.Next() {
		e, err := scanWaitingEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// UpdateWaitingStatus transitions an entry's status and records notified_at
// when supplied.
func (db *DB) UpdateWaitingStatus(ctx context.Context, id string, status models.WaitingStatus, notifiedAt *time.Time) error {
	var notified sql.NullTime
	if notifiedAt != nil {
		notified = sql.NullTime{Time: *notifiedAt, Valid: true}
	}

	var res sql.Result
	var err error
	if notifiedAt != nil {
		res, err = db.ExecContext(ctx,
			"UPDATE waiting_list SET status = ?, notified_at = ?, updated_at = ? WHERE id = ?",
			status, notified, time.Now(), id)
	} else {
		res, err = db.ExecContext(ctx,
			"UPDATE waiting_list SET status = ?, updated_at = ? WHERE id = ?",
			status, time.Now(), id)
	}
	if err != nil {
		return fmt.Errorf("update waiting status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
