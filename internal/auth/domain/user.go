package domain

import "time"

// User is the local record for an Auth0 identity. It is upserted on
// authenticated requests and created lazily when an inbound email arrives
// for an address we have never seen.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Auth0ID   string    `json:"auth0_id" gorm:"uniqueIndex;not null"`
	Name      string    `json:"name"`
	Email     string    `json:"email" gorm:"index"`
	Picture   string    `json:"picture"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// Claims is the verified subset of an Auth0 access token we care about.
type Claims struct {
	Subject string `json:"sub"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
}
