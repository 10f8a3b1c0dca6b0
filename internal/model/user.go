package model

import "time"

// Role values mirror the "role" claim issued by the identity provider.
// The service never creates sessions itself; it only trusts these.
const (
	RoleEmployee        = "EMPLOYEE"
	RoleCompanyAdmin    = "COMPANY_ADMIN"
	RoleOperationsAdmin = "OPERATIONS_ADMIN"
)

// User is the directory record for a rider or administrator.  The
// primary key matches the identity provider's subject, so no password
// or session data is stored here.  New accounts start unapproved and
// cannot book until a company or operations administrator approves them.
//
// Fields:
//  ID          – primary key, equal to the IdP subject.
//  Email       – contact email (nullable, supplied by the IdP).
//  FullName    – display name shown on boarding passes.
//  PhoneNumber – optional contact number.
//  Role        – one of the Role* constants.
//  CompanyID   – owning company (nullable until assigned).
//  IsApproved  – whether the account may create reservations.
//  CreatedAt   – timestamp of first sight.
type User struct {
	ID          uint64    // users.id
	Email       *string   // users.email (nullable)
	FullName    *string   // users.full_name (nullable)
	PhoneNumber *string   // users.phone_number (nullable)
	Role        string    // users.role
	CompanyID   *uint64   // users.company_id (nullable)
	IsApproved  bool      // users.is_approved
	CreatedAt   time.Time // users.created_at
}
