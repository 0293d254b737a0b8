package models

import "time"

// Invitation is a pending-join record. The token is single-use and
// bearer-equivalent; consumption or cancellation deletes the row, while
// expiry is only ever checked at read time.
type Invitation struct {
	ID             uint64           `gorm:"primarykey" json:"id"`
	Token          string           `gorm:"type:varchar(64);uniqueIndex;not null" json:"-"`
	Email          string           `gorm:"type:varchar(255);not null" json:"email"`
	OrganizationID uint64           `gorm:"not null" json:"organization_id"`
	Role           OrganizationRole `gorm:"type:varchar(20);not null" json:"role"`
	ExpiresAt      time.Time        `gorm:"not null" json:"expires_at"`
	CreatedAt      time.Time        `json:"created_at"`

	// Relations
	Organization Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
}

// Expired reports whether the invitation is no longer usable at the given time.
func (i *Invitation) Expired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}
