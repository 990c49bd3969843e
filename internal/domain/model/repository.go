package model

import "time"

// Repository is a GitHub repository tracked by one account. The pair
// (AccountLogin, FullName) is unique.
type Repository struct {
	ID           string
	AccountLogin string
	FullName     string
	Owner        string
	Name         string
	IsActive     bool
	AddedAt      time.Time
}
