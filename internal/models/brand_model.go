package models

import "time"

type Brand struct {
	ID          int64     `db:"id" json:"id"`
	UserID      int64     `db:"user_id" json:"user_id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// BrandCredentials is one stored credential set for a brand and provider.
// The Credentials column holds the encrypted JSON blob as written by the
// brand service; only the service layer sees the decrypted map.
type BrandCredentials struct {
	BrandID     int64     `db:"brand_id" json:"brand_id"`
	Provider    string    `db:"provider" json:"provider"`
	Credentials string    `db:"credentials" json:"-"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
