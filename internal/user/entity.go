// AngelaMos | 2026
// entity.go

package user

import (
	"time"
)

type User struct {
	ID              string     `db:"id"`
	Email           string     `db:"email"`
	PasswordHash    string     `db:"password_hash"`
	Name            string     `db:"name"`
	Role            string     `db:"role"`
	TierID          *string    `db:"tier_id"`
	BillingPeriod   *string    `db:"billing_period"`
	TierActivatedAt *time.Time `db:"tier_activated_at"`
	TokenVersion    int        `db:"token_version"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
	DeletedAt       *time.Time `db:"deleted_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// HasTier reports whether the user already holds tierID for period.
func (u *User) HasTier(tierID, period string) bool {
	return u.TierID != nil && *u.TierID == tierID &&
		u.BillingPeriod != nil && *u.BillingPeriod == period
}

const (
	RoleTalent   = "talent"
	RoleManager  = "manager"
	RoleProducer = "producer"
	RoleAgent    = "agent"
	RoleAdmin    = "admin"
)

func IsValidRole(role string) bool {
	switch role {
	case RoleTalent, RoleManager, RoleProducer, RoleAgent, RoleAdmin:
		return true
	}
	return false
}
