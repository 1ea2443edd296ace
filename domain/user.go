// Package domain contains core concepts of the chat system.
// This file defines User identities and the friend graph they carry.
// No runtime, network, or UI logic should be added here.
package domain

import "time"

// User is an account known to the system. The realtime core only ever
// reads its ID; everything else belongs to the REST plumbing.
type User struct {
	ID          string
	Username    string
	DisplayName string
	AvatarURL   string
	Friends     []string
	CreatedAt   time.Time
}

// IsFriendOf reports whether otherID is part of the user's friend set.
func (u User) IsFriendOf(otherID string) bool {
	for _, id := range u.Friends {
		if id == otherID {
			return true
		}
	}
	return false
}

// PublicUser is the projection of a User safe to hand to other clients.
type PublicUser struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}

func (u User) Public() PublicUser {
	return PublicUser{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
	}
}
