// Package repository defines sentinel error values shared across the
// data access layer. Handlers and services compare against these with
// errors.Is to translate storage outcomes into distinct API responses;
// anything else that bubbles up from the driver is treated as an
// unclassified storage failure and surfaces as a generic 500.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource owned by someone else. Handlers translate this into 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an operation cannot proceed because of
// the current state of dependent records, e.g. cancelling a reservation
// that has already been boarded, or deleting a schedule that still has
// live reservations. Handlers translate this into 409.
var ErrConflict = errors.New("conflict")

// ErrScheduleNotFound is returned when a booking references a schedule
// that does not exist or is no longer active.
var ErrScheduleNotFound = errors.New("schedule not found")

// ErrDuplicateReservation is returned when the user already holds a
// non-cancelled reservation for the same schedule and service day.
var ErrDuplicateReservation = errors.New("duplicate reservation")

// ErrCapacityExceeded is returned when every seat of the departure is
// already taken for the requested service day.
var ErrCapacityExceeded = errors.New("capacity exceeded")

// ErrReservationNotFound is returned when no reservation exists for the
// given identifier (or QR payload, for boarding scans).
var ErrReservationNotFound = errors.New("reservation not found")

// ErrAlreadyCancelled is returned when cancelling a reservation that is
// already cancelled. Cancellation is deliberately not idempotent: the
// caller is told the reservation was gone rather than getting a silent
// success.
var ErrAlreadyCancelled = errors.New("reservation already cancelled")

// ErrAlreadyBoarded is returned when a QR code is scanned a second time
// for the same reservation.
var ErrAlreadyBoarded = errors.New("reservation already boarded")
