package model

import "time"

// Route is a named shuttle line.  A route owns an ordered list of stops
// and one or more recurring departure schedules.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – display name of the line (e.g. "HQ ↔ Station").
//  Description – optional free-form description.
//  CreatedAt   – creation timestamp.
type Route struct {
	ID          uint64    // routes.id
	Name        string    // routes.name
	Description *string   // routes.description (nullable)
	CreatedAt   time.Time // routes.created_at
}

// Stop is one waypoint on a route.  StopOrder defines the boarding
// sequence; coordinates are optional and only used for display.
type Stop struct {
	ID        uint64    // stops.id
	RouteID   uint64    // stops.route_id
	Name      string    // stops.name
	StopOrder uint32    // stops.stop_order
	Latitude  *float64  // stops.latitude (nullable)
	Longitude *float64  // stops.longitude (nullable)
	CreatedAt time.Time // stops.created_at
}
