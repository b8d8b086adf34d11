package dto

import "time"

// CreateEventRequest 时间为 RFC3339 字符串
type CreateEventRequest struct {
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
}

// MonthQuery ?month=&year=
type MonthQuery struct {
	Month int `form:"month"`
	Year  int `form:"year"`
}
