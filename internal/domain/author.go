package domain

import (
	"time"

	"github.com/google/uuid"
)

// Author represents a catalog author record.
//
// FullName and Age are derived values computed at read time; they are never
// stored.
type Author struct {
	ID          uuid.UUID  `json:"id"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	Email       string     `json:"email"`
	Biography   string     `json:"biography,omitempty"`
	BirthDate   *time.Time `json:"birthDate,omitempty"`
	Nationality string     `json:"nationality,omitempty"`
	Website     string     `json:"website,omitempty"`
	IsActive    bool       `json:"isActive"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// FullName returns the author's display name.
func (a *Author) FullName() string {
	return a.FirstName + " " + a.LastName
}

// Age returns the author's age in whole years at the given instant, or nil
// if no birth date is recorded. The subtraction is calendar-aware: a birthday
// that has not yet occurred this year reduces the naive year difference by
// one, so floor-of-days/365 drift never appears around leap years.
func (a *Author) Age(now time.Time) *int {
	if a.BirthDate == nil {
		return nil
	}
	birth := *a.BirthDate
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() ||
		(now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return &age
}
