package domain

import "time"

type Airport struct {
	ID        int64
	Code      string
	Name      string
	City      string
	Country   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
