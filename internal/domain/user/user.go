package user

import (
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// NormalizeRole upper-cases a role as it appears in token claims.
func NormalizeRole(raw string) Role {
	return Role(strings.ToUpper(strings.TrimSpace(raw)))
}

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	Role         Role      `json:"role"`
	Status       Status    `json:"status"`
	ProfilePhoto *string   `json:"profilePhoto"`
	Location     *string   `json:"location"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// with pointers if optional, it will be nil
type ListFilter struct {
	Search *string
	Role   *Role
	Status *Status
	Limit  int
	Offset int
}

// Page is one slice of a filtered listing.
type Page struct {
	Users       []User `json:"users"`
	TotalCount  int    `json:"totalCount"`
	TotalPages  int    `json:"totalPages"`
	CurrentPage int    `json:"currentPage"`
}

// TotalPages is ceil(total/limit); an empty result has zero pages.
func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

type BatchDeleteResult struct {
	Requested int `json:"requested"`
	Deleted   int `json:"deleted"`
}

// FormatTimestamp renders createdAt the way the API exposes it (ISO 8601, UTC, millis).
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}
