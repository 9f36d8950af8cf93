package models

import "time"

// GlobalTokenID is the fixed primary key of the singleton row holding the
// shared long-lived Meta access token.
const GlobalTokenID = 1

type GlobalToken struct {
	ID        int64     `db:"id" json:"id"`
	Token     string    `db:"token" json:"token"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
