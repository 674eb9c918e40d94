package model

import "time"

// Customer is a guest account. PasswordHash is bcrypt at rest and never
// serialized; the plaintext only exists on the create/update request structs.
type Customer struct {
	ID           string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name         string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Email        string    `json:"email" bson:"email" validate:"required,email"`
	Age          int       `json:"age" bson:"age" validate:"required,min=18,max=120"`
	PasswordHash string    `json:"-" bson:"password_hash" validate:"required"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitempty" bson:"updated_at,omitempty" validate:"omitempty"`
}

// NewCustomer is the create payload carrying the plaintext password.
type NewCustomer struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Age      int    `json:"age" validate:"required,min=18,max=120"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// CustomerUpdate is a partial patch for a customer.
type CustomerUpdate struct {
	Name     string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Age      *int   `json:"age,omitempty" validate:"omitempty,min=18,max=120"`
	Password string `json:"password,omitempty" validate:"omitempty,min=8,max=72"`
}
