package model

import (
	"strings"
	"time"
)

type User struct {
	ID                int64  `json:"id"`
	Email             string `json:"email"`
	FirstName         string `json:"firstName"`
	LastName          string `json:"lastName"`
	ProfilePictureURL string `json:"profilePictureUrl,omitempty"`
}

// DisplayName is "First Last" when both names are set, otherwise the email.
func (u User) DisplayName() string {
	if u.FirstName != "" && u.LastName != "" {
		return u.FirstName + " " + u.LastName
	}
	if u.FirstName != "" {
		return u.FirstName
	}
	return u.Email
}

// Initials is the avatar fallback when there is no profile picture.
func (u User) Initials() string {
	name := u.DisplayName()
	if name == "" {
		return "?"
	}
	parts := strings.Fields(name)
	if len(parts) >= 2 {
		return strings.ToUpper(string([]rune(parts[0])[:1]) + string([]rune(parts[1])[:1]))
	}
	r := []rune(name)
	if len(r) > 2 {
		r = r[:2]
	}
	return strings.ToUpper(string(r))
}

type AuthResponse struct {
	Token string `json:"token"`
	User
}

// Profile is the canonical profile payload: the counts are always present.
type Profile struct {
	User
	CreatedAt           time.Time `json:"createdAt"`
	TotalMovieNights    int       `json:"totalMovieNights"`
	UpcomingMovieNights int       `json:"upcomingMovieNights"`
	FriendsCount        int       `json:"friendsCount"`
	PendingRequests     int       `json:"pendingRequests"`
}

type ProfileUpdate struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}
