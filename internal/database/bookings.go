package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ayushbirla71/restaurant-backend/internal/models"
)

const bookingColumns = `id, table_id, customer_name, mobile, email, people_count,
    booking_time, booking_date, booking_time_slot, duration_minutes, booking_type,
    status, priority, confirmation_status, confirmed_at, delay_minutes,
    notifications_sent, created_at, updated_at`

func scanBooking(row interface{ Scan(...any) error }) (*models.Booking, error) {
	var b models.Booking
	var email, bookingDate, bookingSlot sql.NullString
	var bookingTime, confirmedAt sql.NullTime
	var markers string

	err := row.Scan(
		&b.ID, &b.TableID, &b.CustomerName, &b.Mobile, &email, &b.PeopleCount,
		&bookingTime, &bookingDate, &bookingSlot, &b.DurationMinutes, &b.BookingType,
		&b.Status, &b.Priority, &b.ConfirmationStatus, &confirmedAt, &b.DelayMinutes,
		&markers, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.Email = email.String
	b.BookingDate = bookingDate.String
	b.BookingTimeSlot = bookingSlot.String
	if bookingTime.Valid {
		b.BookingTime = &bookingTime.Time
	}
	if confirmedAt.Valid {
		b.ConfirmedAt = &confirmedAt.Time
	}
	if err := json.Unmarshal([]byte(markers), &b.NotificationsSent); err != nil {
		b.NotificationsSent = nil
	}
	return &b, nil
}

func markersJSON(markers []string) string {
	if len(markers) == 0 {
		return "[]"
	}
	data, err := json.Marshal(markers)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// CreateBooking inserts a booking, assigning an id when absent.
func (db *DB) CreateBooking(ctx context.Context, b *models.Booking) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	now := time.Now()
	b.CreatedAt = now
	b.UpdatedAt = now

	var bookingTime sql.NullTime
	if b.BookingTime != nil {
		bookingTime = sql.NullTime{Time: *b.BookingTime, Valid: true}
	}

	_, err := db.ExecContext(ctx, `
        INSERT INTO bookings (id, table_id, customer_name, mobile, email, people_count,
            booking_time, booking_date, booking_time_slot, duration_minutes, booking_type,
            status, priority, confirmation_status, delay_minutes, notifications_sent,
            created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.TableID, b.CustomerName, b.Mobile, b.Email, b.PeopleCount,
		bookingTime, nullString(b.BookingDate), nullString(b.BookingTimeSlot),
		b.DurationMinutes, b.BookingType, b.Status, b.Priority, b.ConfirmationStatus,
		b.DelayMinutes, markersJSON(b.NotificationsSent), b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create booking: %w", err)
	}
	return nil
}

// GetBooking returns a booking by id, or sql.ErrNoRows.
func (db *DB) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	row := db.QueryRowContext(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE id = ?", id)
	return scanBooking(row)
}

// UpdateBooking writes back every mutable field of a booking.
func (db *DB) UpdateBooking(ctx context.Context, b *models.Booking) error {
	b.UpdatedAt = time.Now()

	var bookingTime sql.NullTime
	if b.BookingTime != nil {
		bookingTime = sql.NullTime{Time: *b.BookingTime, Valid: true}
	}
	var confirmedAt sql.NullTime
	if b.ConfirmedAt != nil {
		confirmedAt = sql.NullTime{Time: *b.ConfirmedAt, Valid: true}
	}

	res, err := db.ExecContext(ctx, `
        UPDATE bookings
        SET table_id = ?, customer_name = ?, mobile = ?, email = ?, people_count = ?,
            booking_time = ?, booking_date = ?, booking_time_slot = ?, duration_minutes = ?,
            booking_type = ?, status = ?, priority = ?, confirmation_status = ?,
            confirmed_at = ?, delay_minutes = ?, updated_at = ?
        WHERE id = ?`,
		b.TableID, b.CustomerName, b.Mobile, b.Email, b.PeopleCount,
		bookingTime, nullString(b.BookingDate), nullString(b.BookingTimeSlot),
		b.DurationMinutes, b.BookingType, b.Status, b.Priority, b.ConfirmationStatus,
		confirmedAt, b.DelayMinutes, b.UpdatedAt, b.ID,
	)
	if err != nil {
		return fmt.Errorf("update booking: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// GetActiveBookingsByTable returns the non-terminal (BOOKED/CONFIRMED)
// bookings assigned to a table, in storage order.
func (db *DB) GetActiveBookingsByTable(ctx context.Context, tableID string) ([]models.Booking, error) {
	return db.queryBookings(ctx, `
        SELECT `+bookingColumns+` FROM bookings
        WHERE table_id = ? AND status IN (?, ?)
        ORDER BY created_at ASC`,
		tableID, models.BookingBooked, models.BookingConfirmed)
}

// GetTodayBookings returns non-terminal bookings relevant to reconciliation:
// walk-ins created today plus pre-bookings scheduled for today.
func (db *DB) GetTodayBookings(ctx context.Context, now time.Time) ([]models.Booking, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)
	today := dayStart.Format("2006-01-02")

	return db.queryBookings(ctx, `
        SELECT `+bookingColumns+` FROM bookings
        WHERE status IN (?, ?)
          AND (
            (booking_type = ? AND created_at >= ? AND created_at < ?)
            OR (booking_type = ? AND booking_date = ?)
          )
        ORDER BY booking_date ASC, booking_time_slot ASC, booking_time ASC`,
		models.BookingBooked, models.BookingConfirmed,
		models.WalkIn, dayStart, dayEnd,
		models.PreBooking, today)
}

// GetNotifiableBookings returns bookings eligible for upcoming reminders:
// status BOOKED/CONFIRMED with confirmation PENDING or CONFIRMED.
func (db *DB) GetNotifiableBookings(ctx context.Context) ([]models.Booking, error) {
	return db.queryBookings(ctx, `
        SELECT `+bookingColumns+` FROM bookings
        WHERE status IN (?, ?) AND confirmation_status IN (?, ?)`,
		models.BookingBooked, models.BookingConfirmed,
		models.ConfirmationPending, models.ConfirmationConfirmed)
}

// GetPendingConfirmations returns BOOKED/CONFIRMED bookings still awaiting
// customer confirmation, ordered by scheduled time.
func (db *DB) GetPendingConfirmations(ctx context.Context) ([]models.Booking, error) {
	return db.queryBookings(ctx, `
        SELECT `+bookingColumns+` FROM bookings
        WHERE status IN (?, ?) AND confirmation_status = ?
        ORDER BY booking_date ASC, booking_time_slot ASC, booking_time ASC`,
		models.BookingBooked, models.BookingConfirmed, models.ConfirmationPending)
}

// ListBookings returns every booking, newest first.
func (db *DB) ListBookings(ctx context.Context) ([]models.Booking, error) {
	return db.queryBookings(ctx,
		"SELECT "+bookingColumns+" FROM bookings ORDER BY created_at DESC")
}

// GetBookingsCreatedBetween returns bookings created inside [start, end).
func (db *DB) GetBookingsCreatedBetween(ctx context.Context, start, end time.Time) ([]models.Booking, error) {
	return db.queryBookings(ctx, `
        SELECT `+bookingColumns+` FROM bookings
        WHERE created_at >= ? AND created_at < ?
        ORDER BY created_at ASC`, start, end)
}

// AppendNotificationMarker appends a reminder marker to a booking's persisted
// marker set with compare-and-swap semantics: the write succeeds only if the
// stored set still equals prev. Returns false when another writer got there
// first or the marker is already present.
func (db *DB) AppendNotificationMarker(ctx context.Context, id, marker string, prev []string) (bool, error) {
	for _, m := range prev {
		if m == marker {
			return false, nil
		}
	}
	next := append(append([]string(nil), prev...), marker)

	res, err := db.ExecContext(ctx, `
        UPDATE bookings SET notifications_sent = ?, updated_at = ?
        WHERE id = ? AND notifications_sent = ?`,
		markersJSON(next), time.Now(), id, markersJSON(prev),
	)
	if err != nil {
		return false, fmt.Errorf("append notification marker: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (db *DB) queryBookings(ctx context.Context, query string, args ...any) ([]models.Booking, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
