package models

import "time"

type Post struct {
	ID         int64      `db:"id" json:"id"`
	BrandID    int64      `db:"brand_id" json:"brand_id"`
	Status     string     `db:"status" json:"status"` // draft, scheduled, approved, sent, failed
	Title      string     `db:"title" json:"title"`
	ShortText  string     `db:"short_text" json:"short_text"`
	LongText   string     `db:"long_text" json:"long_text"`
	Caption    string     `db:"caption" json:"caption"`
	Hashtags   []string   `db:"hashtags" json:"hashtags"`
	Body       string     `db:"body" json:"body"`
	MediaURL   string     `db:"media_url" json:"media_url"`
	ScheduleAt *time.Time `db:"schedule_at" json:"schedule_at"`
	LastError  string     `db:"last_error" json:"last_error"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

const (
	PostStatusDraft     = "draft"
	PostStatusScheduled = "scheduled"
	PostStatusApproved  = "approved"
	PostStatusSent      = "sent"
	PostStatusFailed    = "failed"
)
