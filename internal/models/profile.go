package models

import (
	"time"
)

// Profile is a 1:1 extension of User, created lazily on first write.
// Email is a pointer so that profiles without one do not collide on the
// unique index.
type Profile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	Bio       string    `gorm:"type:text" json:"bio"`
	AvatarURL string    `gorm:"type:varchar(255)" json:"avatar_url"`
	Email     *string   `gorm:"type:varchar(100);uniqueIndex" json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Foreign key relationship
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
