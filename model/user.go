package model

import (
	"time"

	"github.com/google/uuid"
)

// User is a Telegram account known to the bot. The ID is the Telegram
// user ID, which doubles as the chat ID for notifications.
type User struct {
	ID              int64     `json:"id"`
	ActiveProfileID string    `json:"active_profile_id"`
	CreatedAt       time.Time `json:"created_at"`
}

// Profile groups tracked channels under one niche for a user.
type Profile struct {
	ID                   string `json:"id"`
	UserID               int64  `json:"user_id"`
	Name                 string `json:"name"`
	Niche                string `json:"niche"`
	Language             string `json:"language"`
	NotificationsEnabled bool   `json:"notifications_enabled"`
}

// Channel is a tracked YouTube channel. Created by user command,
// immutable afterwards.
type Channel struct {
	ID              string           `json:"id"`
	ProfileID       string           `json:"profile_id"`
	YoutubeID       YoutubeChannelID `json:"youtube_id"`
	Name            string           `json:"name"`
	SubscriberCount uint64           `json:"subscriber_count"`
}

func NewProfile(userID int64, name string) *Profile {
	return &Profile{
		ID:                   uuid.New().String(),
		UserID:               userID,
		Name:                 name,
		Language:             "ru",
		NotificationsEnabled: true,
	}
}

func NewChannel(profileID string, youtubeID YoutubeChannelID, name string, subscriberCount uint64) *Channel {
	return &Channel{
		ID:              uuid.New().String(),
		ProfileID:       profileID,
		YoutubeID:       youtubeID,
		Name:            name,
		SubscriberCount: subscriberCount,
	}
}
