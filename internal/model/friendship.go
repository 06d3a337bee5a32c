package model

import "time"

// FriendshipStatus is always relative to the authenticated viewer.
type FriendshipStatus string

const (
	FriendshipNone            FriendshipStatus = "none"
	FriendshipPendingSent     FriendshipStatus = "pending_sent"
	FriendshipPendingReceived FriendshipStatus = "pending_received"
	FriendshipFriends         FriendshipStatus = "friends"
	FriendshipSelf            FriendshipStatus = "self"
)

func (s FriendshipStatus) Valid() bool {
	switch s {
	case FriendshipNone, FriendshipPendingSent, FriendshipPendingReceived, FriendshipFriends, FriendshipSelf:
		return true
	}
	return false
}

// CanViewCalendar reports whether the viewer may open this user's calendar.
func (s FriendshipStatus) CanViewCalendar() bool {
	return s == FriendshipFriends || s == FriendshipSelf
}

type UserSummary struct {
	User
	FriendshipStatus FriendshipStatus `json:"friendshipStatus,omitempty"`
	IsFollowing      bool             `json:"isFollowing"`
}

type FriendRequest struct {
	ID        int64     `json:"id"`
	From      User      `json:"from"`
	CreatedAt time.Time `json:"createdAt"`
}

type UserFriends struct {
	User         User          `json:"user"`
	Friends      []UserSummary `json:"friends"`
	FriendsCount int           `json:"friendsCount"`
}

type FriendStats struct {
	FriendsCount    int `json:"friendsCount"`
	PendingRequests int `json:"pendingRequests"`
}

type FollowStats struct {
	FollowersCount int `json:"followersCount"`
	FollowingCount int `json:"followingCount"`
}
