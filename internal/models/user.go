package models

import "time"

// User is the account record persisted at signup.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	FirstName    string    `json:"firstName" gorm:"type:varchar(100);not null"`
	Username     string    `json:"username" gorm:"uniqueIndex;type:varchar(100);not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	PasswordHash string    `json:"-" gorm:"type:varchar(255);not null"` // Never serialized
	IsAdmin      bool      `json:"isAdmin" gorm:"not null;default:false"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// Claims is the public subset of a user embedded in issued credentials and
// returned to clients as userData.
type Claims struct {
	FirstName string `json:"firstName"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	IsAdmin   bool   `json:"isAdmin"`
}

// Claims builds the claims set from the stored record.
func (u *User) Claims() Claims {
	return Claims{
		FirstName: u.FirstName,
		Username:  u.Username,
		Email:     u.Email,
		IsAdmin:   u.IsAdmin,
	}
}
