package models

import "time"

type User struct {
	ID             int64     `db:"id" json:"id"`
	GoogleID       string    `db:"google_id" json:"-"`
	Email          string    `db:"email" json:"email"`
	PasswordHash   string    `db:"password_hash" json:"-"`
	Name           string    `db:"name" json:"name"`
	ProfilePicture string    `db:"profile_picture" json:"profile_picture"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
