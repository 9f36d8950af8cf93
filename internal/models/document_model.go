package models

import "time"

type Document struct {
	ID        int64     `db:"id" json:"id"`
	BrandID   int64     `db:"brand_id" json:"brand_id"`
	FileName  string    `db:"file_name" json:"file_name"`
	FileType  string    `db:"file_type" json:"file_type"`
	FileSize  int64     `db:"file_size" json:"file_size"`
	FileURL   string    `db:"file_url" json:"file_url"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
