package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	MemberStatusActive    = "ACTIVE"
	MemberStatusInactive  = "INACTIVE"
	MemberStatusSuspended = "SUSPENDED"
	MemberStatusPending   = "PENDING"
)

// Member represents a registered SACCO member
type Member struct {
	ID           uuid.UUID `json:"id" db:"id"`
	MemberNumber string    `json:"member_number" db:"member_number"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	NationalID   string    `json:"national_id" db:"national_id"`
	Phone        string    `json:"phone" db:"phone"`
	Email        string    `json:"email" db:"email"`
	Address      string    `json:"address" db:"address"`
	JoinDate     time.Time `json:"join_date" db:"join_date"`
	Status       string    `json:"status" db:"status"`
	KYCVerified  bool      `json:"kyc_verified" db:"kyc_verified"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

type CreateMemberRequest struct {
	MemberNumber string    `json:"member_number" validate:"required"`
	FirstName    string    `json:"first_name" validate:"required"`
	LastName     string    `json:"last_name" validate:"required"`
	NationalID   string    `json:"national_id" validate:"required,min=5"`
	Phone        string    `json:"phone" validate:"required,min=7"`
	Email        string    `json:"email" validate:"omitempty,email"`
	Address      string    `json:"address"`
	JoinDate     time.Time `json:"join_date"`
	KYCVerified  bool      `json:"kyc_verified"`
}

type UpdateMemberRequest struct {
	Phone       *string `json:"phone" validate:"omitempty,min=7"`
	Email       *string `json:"email" validate:"omitempty,email"`
	Address     *string `json:"address"`
	Status      *string `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE SUSPENDED PENDING"`
	KYCVerified *bool   `json:"kyc_verified"`
}
