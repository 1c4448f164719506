package domain

import "time"

// AdminMembership is a row in the side table that grants cross-facility
// access. The membership row itself is the authorization gate; the account's
// role field stays "user".
type AdminMembership struct {
	UID       string    `json:"uid"`
	Email     string    `json:"email"`
	AddedBy   string    `json:"added_by"`
	CreatedAt time.Time `json:"created_at"`
}

type AddAdminDTO struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=100"`
}
