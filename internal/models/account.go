package models

import "time"

// Profile holds per-user bookkeeping created alongside the account.
type Profile struct {
	UserID     string    `json:"userId" gorm:"primaryKey;type:varchar(36)"`
	SignedUpAt time.Time `json:"signedUpAt" gorm:"not null"`
	SavedCount int       `json:"savedCount" gorm:"not null;default:0"`
}

// UsernameReservation maps a username to the account that owns it.
type UsernameReservation struct {
	Username string `json:"username" gorm:"primaryKey;type:varchar(100)"`
	UserID   string `json:"userId" gorm:"type:varchar(36);not null"`
}

// TableName keeps reservations in their own "usernames" table.
func (UsernameReservation) TableName() string {
	return "usernames"
}

// Account groups the records written together at signup.
type Account struct {
	User        User
	Profile     Profile
	Reservation UsernameReservation
}

// NewAccount assembles the signup batch for user.
func NewAccount(user User, signedUpAt time.Time) *Account {
	return &Account{
		User: user,
		Profile: Profile{
			UserID:     user.ID,
			SignedUpAt: signedUpAt,
		},
		Reservation: UsernameReservation{
			Username: user.Username,
			UserID:   user.ID,
		},
	}
}
