package domain

import "time"

// User is a reader. Identity is established elsewhere; the tracker keeps the
// registration time for the yearly clamp and the user's goal overrides.
type User struct {
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	ID          string       `json:"id"`
	Email       string       `json:"email"`
	DisplayName string       `json:"displayName"`
	Goals       GoalSettings `json:"goals"`
}

// RegistrationYear is the earliest year analytics may report on.
func (u *User) RegistrationYear(loc *time.Location) int {
	return u.CreatedAt.In(loc).Year()
}
