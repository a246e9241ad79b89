package domain

import "time"

// Account is a single credential record. Email is the partition key:
// every lookup and partial update in the auth flow is keyed by email,
// and keying on it lets the store enforce email uniqueness with a
// conditional write instead of application-side locking.
//
// CacheCode and its expiry serve both the signup-verification flow and
// the password-reset flow; issuing a reset code overwrites a pending
// signup code. ExpiresAt is the DynamoDB TTL attribute: it is set at
// signup (created + 10 min) and removed when the account is verified,
// so unverified accounts age out of the table passively.
type Account struct {
	Email           string    `json:"email" dynamodbav:"email"`
	UserID          string    `json:"id" dynamodbav:"user_id"`
	Username        string    `json:"username" dynamodbav:"username"`
	PhoneNumber     string    `json:"phoneNumber" dynamodbav:"phone_number"`
	PasswordHash    string    `json:"-" dynamodbav:"password_hash"`
	CacheCode       string    `json:"-" dynamodbav:"cache_code,omitempty"`
	CacheCodeExpiry int64     `json:"-" dynamodbav:"cache_code_expiry,omitempty"` // Unix seconds
	Verified        bool      `json:"isVerified" dynamodbav:"verified"`
	ExpiresAt       int64     `json:"-" dynamodbav:"expires_at,omitempty"` // TTL (Unix seconds), unverified only
	CreatedAt       time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt       time.Time `json:"updated" dynamodbav:"updated_at"`
}

type SignupRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=32"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phoneNumber" validate:"required,numeric,min=7,max=15"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
}

type VerifyCodeRequest struct {
	Email     string `json:"email" validate:"required,email"`
	CacheCode string `json:"cacheCode" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	CacheCode string `json:"cacheCode" validate:"required"`
}

type SigninRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
