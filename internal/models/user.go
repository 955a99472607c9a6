package models

import "time"

// User is an API account allowed to modify products when auth is enabled.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Username  string    `json:"username" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=3,max=100"`
	Email     string    `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email,max=255"`
	Password  string    `json:"password,omitempty" gorm:"type:varchar(255)" validate:"required,min=6,max=72"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
