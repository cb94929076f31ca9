package auth

import (
	"time"

	"github.com/lib/pq"
)

// RoleUser is the base role assigned to every account on creation.
const RoleUser = "User"

type User struct {
	ID       uint64 `gorm:"primaryKey"`
	Email    string `gorm:"uniqueIndex;not null"`
	Username string `gorm:"not null"`

	// Empty for accounts created through an external provider.
	PasswordHash string `gorm:"not null;default:''"`

	IsGoogleUser bool `gorm:"not null;default:false"`

	Roles pq.StringArray `gorm:"type:text[];not null;default:'{}'"`

	CreatedAt time.Time `gorm:"not null"`
}

// HasRole reports whether the user carries the given role.
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
