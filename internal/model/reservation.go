package model

import "time"

// Reservation status values.  Transitions are one-directional:
// confirmed -> cancelled (rider/admin action) or confirmed -> completed
// (boarding scan).  Cancelled and completed are terminal.
const (
	ReservationConfirmed = "confirmed"
	ReservationCancelled = "cancelled"
	ReservationCompleted = "completed"
)

// Reservation is a user's claim on one seat of one schedule for one
// specific service day.  QRCode is assigned exactly once at creation
// and never changes; it is the payload scanned at boarding.
//
// Fields:
//  ID              – primary key identifier.
//  UserID          – rider who owns the seat.
//  ScheduleID      – recurring departure slot being booked.
//  ReservationDate – service day in "YYYY-MM-DD" form.
//  Status          – one of the Reservation* constants.
//  QRCode          – opaque unique boarding token.
//  CreatedAt       – creation timestamp.
type Reservation struct {
	ID              uint64    // reservations.id
	UserID          uint64    // reservations.user_id
	ScheduleID      uint64    // reservations.schedule_id
	ReservationDate string    // reservations.reservation_date (DATE)
	Status          string    // reservations.status
	QRCode          string    // reservations.qr_code
	CreatedAt       time.Time // reservations.created_at
}

// BoardingRecord is written when a confirmed reservation's QR code is
// scanned on the vehicle.  The reward engine derives attendance streaks
// from these rows.
type BoardingRecord struct {
	ID            uint64    // boarding_records.id
	ReservationID uint64    // boarding_records.reservation_id
	BoardedAt     time.Time // boarding_records.boarded_at
	CreatedAt     time.Time // boarding_records.created_at
}

// BoardingPass is the derived, time-boxed credential projected from a
// confirmed reservation.  It is never stored.  QRCode is empty when
// Valid is false so an expired pass carries no scannable payload.
type BoardingPass struct {
	ReservationID   uint64 `json:"reservation_id"`
	HolderName      string `json:"holder_name"`
	RouteName       string `json:"route_name"`
	DepartureTime   string `json:"departure_time"`
	ReservationDate string `json:"reservation_date"`
	Valid           bool   `json:"valid"`
	QRCode          string `json:"qr_code,omitempty"`
}
