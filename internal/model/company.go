package model

import "time"

// Company represents a tenant organisation whose employees ride the
// shuttle.  Users reference a company via CompanyID.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – unique company name.
//  CreatedAt – creation timestamp.
type Company struct {
	ID        uint64    // companies.id
	Name      string    // companies.name
	CreatedAt time.Time // companies.created_at
}
