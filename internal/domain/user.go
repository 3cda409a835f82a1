package domain

import "time"

// User is a profile upserted from the identity provider's token claims.
// Subject is the provider's stable subject id.
type User struct {
	ID        string    `json:"id" db:"id"`
	Subject   string    `json:"subject" db:"subject"`
	Email     string    `json:"email" db:"email"`
	Name      *string   `json:"name" db:"name"`
	Role      string    `json:"role" db:"role"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
