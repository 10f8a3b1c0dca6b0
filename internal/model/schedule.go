package model

import "time"

// Schedule is a recurring daily departure slot on a route.  It is not a
// single dated trip: one schedule row covers every service day, and
// reservations pin it to a concrete date.  TotalSeats is the fixed
// capacity of the vehicle assigned to the slot and is immutable once
// the schedule has been created.
//
// Fields:
//  ID            – primary key identifier.
//  RouteID       – route this departure belongs to.
//  DepartureTime – time of day in "HH:MM:SS" form (schedules.departure_time TIME).
//  TotalSeats    – seat capacity per service day (positive).
//  IsActive      – whether the slot is currently bookable.
//  CreatedAt     – creation timestamp.
type Schedule struct {
	ID            uint64    // schedules.id
	RouteID       uint64    // schedules.route_id
	DepartureTime string    // schedules.departure_time
	TotalSeats    uint32    // schedules.total_seats
	IsActive      bool      // schedules.is_active
	CreatedAt     time.Time // schedules.created_at
}
