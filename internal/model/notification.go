package model

import (
	"strings"
	"time"
)

// Notification is a rendered chat message.
type Notification struct {
	Network   Network             `json:"network"`
	TokenID   string              `json:"token_id"`
	Title     string              `json:"title"`
	Color     int                 `json:"color"`
	URL       string              `json:"url"`
	Fields    []NotificationField `json:"fields"`
	Author    NotificationAuthor  `json:"author"`
	Thumbnail string              `json:"thumbnail"`
	Timestamp time.Time           `json:"timestamp"`
}

// NotificationField is a single name/value cell.
type NotificationField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// NotificationAuthor is the author line of a message.
type NotificationAuthor struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

func lower(s string) string {
	return strings.ToLower(s)
}
