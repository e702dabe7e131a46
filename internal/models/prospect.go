package models

import "time"

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Prospect is a company a user is tracking as a job lead.
type Prospect struct {
	ID            string      `json:"id" gorm:"primaryKey;type:varchar(26)"`
	UserID        string      `json:"userId" gorm:"index;type:varchar(36);not null"`
	CompanyName   string      `json:"companyName" gorm:"type:varchar(200);not null"`
	Address       string      `json:"address" gorm:"type:varchar(500)"`
	Coordinates   Coordinates `json:"coordinates" gorm:"embedded;embeddedPrefix:coordinates_"`
	Website       string      `json:"website" gorm:"type:varchar(500)"`
	JobAppliedFor string      `json:"jobAppliedFor" gorm:"type:varchar(200)"`
	ContactPerson string      `json:"contactPerson" gorm:"type:varchar(200)"`
	ContactEmail  string      `json:"contactEmail" gorm:"type:varchar(255)"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// GeocodeResult is the resolved form of a free-text address.
type GeocodeResult struct {
	FormattedAddress string      `json:"formattedAddress"`
	Coordinates      Coordinates `json:"coordinates"`
}
