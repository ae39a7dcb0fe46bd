package model

import "time"

type YoutubeVideoID string

type YoutubeChannelID string

// Video is a search result for a channel. It is fetched fresh every
// sweep and never persisted, except for its ID in the processed list.
type Video struct {
	ID           YoutubeVideoID
	ChannelID    YoutubeChannelID
	Title        string
	Description  string
	ThumbnailURL string
	PublishedAt  time.Time
}

// VideoDetails is the full metadata for a single video.
type VideoDetails struct {
	Video

	Tags         []string
	ViewCount    uint64
	LikeCount    uint64
	CommentCount uint64
	Language     string
}

type ChannelDetails struct {
	Name            string
	SubscriberCount uint64
	ThumbnailURL    string
}

func (v Video) URL() string {
	return "https://youtube.com/watch?v=" + string(v.ID)
}
