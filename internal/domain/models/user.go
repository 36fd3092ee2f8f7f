package models

import "time"

// User is the authoritative subject record. The refresh token is never
// stored raw; only its SHA-256 digest and natural expiry live on the row.
type User struct {
	ID                    int64      `json:"id"`
	Email                 string     `json:"email"`
	PasswordHash          string     `json:"-"`
	FirstName             string     `json:"firstName"`
	LastName              string     `json:"lastName"`
	IsActive              bool       `json:"isActive"`
	RefreshTokenHash      *string    `json:"-"`
	RefreshTokenExpiresAt *time.Time `json:"-"`
	CreatedAt             time.Time  `json:"createdAt"`
}

// UserResponse is the client-facing projection of a User.
type UserResponse struct {
	ID        int64  `json:"userId"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}
