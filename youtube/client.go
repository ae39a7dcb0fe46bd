package youtube

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"ewintr.nl/commentboost/model"
)

var (
	// ErrAllKeysExhausted means every configured API key has reported
	// quota exhaustion. Retired keys stay retired for the lifetime of
	// the process.
	ErrAllKeysExhausted = errors.New("all youtube api keys exhausted")

	ErrVideoNotFound   = errors.New("video not found")
	ErrChannelNotFound = errors.New("channel not found")
)

var (
	channelURLPattern = regexp.MustCompile(`youtube\.com/channel/([a-zA-Z0-9_-]+)`)
	handleURLPattern  = regexp.MustCompile(`youtube\.com/@([a-zA-Z0-9_.-]+)`)
)

// Client queries the YouTube Data API with a pool of API keys. Keys
// are tried round-robin starting from the last successful one. A key
// that reports quota exhaustion is retired and never selected again.
type Client struct {
	keys     []string
	services []*youtube.Service
	current  int
	retired  []bool
	logger   *slog.Logger
}

func NewClient(ctx context.Context, apiKeys []string, logger *slog.Logger) (*Client, error) {
	if len(apiKeys) == 0 {
		return nil, fmt.Errorf("no youtube api keys configured")
	}

	services := make([]*youtube.Service, 0, len(apiKeys))
	for _, key := range apiKeys {
		service, err := youtube.NewService(ctx, option.WithAPIKey(key))
		if err != nil {
			return nil, fmt.Errorf("failed to create youtube service: %w", err)
		}
		services = append(services, service)
	}

	return &Client{
		keys:     apiKeys,
		services: services,
		retired:  make([]bool, len(apiKeys)),
		logger:   logger,
	}, nil
}

// withRotation runs op against the current key, moving on to the next
// untried key when the platform reports quota exhaustion. Any other
// failure is returned as is. Each key is tried at most once per call.
func (c *Client) withRotation(op func(*youtube.Service) error) error {
	for i := 0; i < len(c.services); i++ {
		idx := (c.current + i) % len(c.services)
		if c.retired[idx] {
			continue
		}

		err := op(c.services[idx])
		if err == nil {
			c.current = idx
			return nil
		}
		if !isQuotaExceeded(err) {
			return err
		}

		c.retired[idx] = true
		c.logger.Warn("youtube api key exhausted", slog.Int("key", idx+1))
	}

	return ErrAllKeysExhausted
}

func isQuotaExceeded(err error) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.Code != 403 {
		return false
	}
	for _, item := range apiErr.Errors {
		if strings.Contains(item.Reason, "quota") || item.Reason == "dailyLimitExceeded" {
			return true
		}
	}

	return strings.Contains(strings.ToLower(apiErr.Message), "quota")
}

// LatestVideos returns up to max of the most recently published videos
// on a channel.
func (c *Client) LatestVideos(ctx context.Context, channelID model.YoutubeChannelID, max int64) ([]model.Video, error) {
	var videos []model.Video
	err := c.withRotation(func(service *youtube.Service) error {
		response, err := service.Search.List([]string{"snippet"}).
			ChannelId(string(channelID)).
			Order("date").
			Type("video").
			MaxResults(max).
			Context(ctx).
			Do()
		if err != nil {
			return err
		}

		videos = make([]model.Video, 0, len(response.Items))
		for _, item := range response.Items {
			if item.Id == nil || item.Id.VideoId == "" {
				continue
			}
			videos = append(videos, model.Video{
				ID:           model.YoutubeVideoID(item.Id.VideoId),
				ChannelID:    channelID,
				Title:        item.Snippet.Title,
				Description:  item.Snippet.Description,
				ThumbnailURL: thumbnailURL(item.Snippet.Thumbnails),
				PublishedAt:  parseTimestamp(item.Snippet.PublishedAt),
			})
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return videos, nil
}

// VideoDetails fetches full metadata and counts for one video. It
// returns ErrVideoNotFound when the platform no longer resolves the ID.
func (c *Client) VideoDetails(ctx context.Context, videoID model.YoutubeVideoID) (*model.VideoDetails, error) {
	var details *model.VideoDetails
	err := c.withRotation(func(service *youtube.Service) error {
		response, err := service.Videos.List([]string{"snippet", "statistics"}).
			Id(string(videoID)).
			Context(ctx).
			Do()
		if err != nil {
			return err
		}
		if len(response.Items) == 0 {
			return ErrVideoNotFound
		}

		item := response.Items[0]
		language := item.Snippet.DefaultLanguage
		if language == "" {
			language = item.Snippet.DefaultAudioLanguage
		}
		if language == "" {
			language = "en"
		}
		details = &model.VideoDetails{
			Video: model.Video{
				ID:           videoID,
				ChannelID:    model.YoutubeChannelID(item.Snippet.ChannelId),
				Title:        item.Snippet.Title,
				Description:  item.Snippet.Description,
				ThumbnailURL: thumbnailURL(item.Snippet.Thumbnails),
				PublishedAt:  parseTimestamp(item.Snippet.PublishedAt),
			},
			Tags:     item.Snippet.Tags,
			Language: language,
		}
		if item.Statistics != nil {
			details.ViewCount = item.Statistics.ViewCount
			details.LikeCount = item.Statistics.LikeCount
			details.CommentCount = item.Statistics.CommentCount
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return details, nil
}

// ChannelDetails fetches the display name and subscriber count of a
// channel.
func (c *Client) ChannelDetails(ctx context.Context, channelID model.YoutubeChannelID) (*model.ChannelDetails, error) {
	var details *model.ChannelDetails
	err := c.withRotation(func(service *youtube.Service) error {
		response, err := service.Channels.List([]string{"snippet", "statistics"}).
			Id(string(channelID)).
			Context(ctx).
			Do()
		if err != nil {
			return err
		}
		if len(response.Items) == 0 {
			return ErrChannelNotFound
		}

		item := response.Items[0]
		details = &model.ChannelDetails{
			Name: item.Snippet.Title,
		}
		if item.Statistics != nil {
			details.SubscriberCount = item.Statistics.SubscriberCount
		}
		if item.Snippet.Thumbnails != nil && item.Snippet.Thumbnails.Default != nil {
			details.ThumbnailURL = item.Snippet.Thumbnails.Default.Url
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return details, nil
}

// ResolveChannel turns a channel URL, an @handle or a free text query
// into a channel ID and name. It returns ErrChannelNotFound when
// nothing matches.
func (c *Client) ResolveChannel(ctx context.Context, input string) (model.YoutubeChannelID, string, error) {
	if match := channelURLPattern.FindStringSubmatch(input); match != nil {
		return c.lookupChannelID(ctx, model.YoutubeChannelID(match[1]))
	}

	query := input
	if match := handleURLPattern.FindStringSubmatch(input); match != nil {
		query = match[1]
	} else if strings.HasPrefix(input, "@") {
		query = input[1:]
	}

	var id model.YoutubeChannelID
	var name string
	err := c.withRotation(func(service *youtube.Service) error {
		response, err := service.Search.List([]string{"snippet"}).
			Q(query).
			Type("channel").
			MaxResults(1).
			Context(ctx).
			Do()
		if err != nil {
			return err
		}
		if len(response.Items) == 0 {
			return ErrChannelNotFound
		}
		id = model.YoutubeChannelID(response.Items[0].Snippet.ChannelId)
		name = response.Items[0].Snippet.ChannelTitle

		return nil
	})
	if err != nil {
		return "", "", err
	}

	return id, name, nil
}

func (c *Client) lookupChannelID(ctx context.Context, channelID model.YoutubeChannelID) (model.YoutubeChannelID, string, error) {
	details, err := c.ChannelDetails(ctx, channelID)
	if err != nil {
		return "", "", err
	}

	return channelID, details.Name, nil
}

// KeyStatus reports one entry per configured key for the status
// endpoint.
type KeyStatus struct {
	Preview string `json:"preview"`
	Retired bool   `json:"retired"`
}

func (c *Client) KeyStatus() []KeyStatus {
	statuses := make([]KeyStatus, 0, len(c.keys))
	for i, key := range c.keys {
		statuses = append(statuses, KeyStatus{
			Preview: keyPreview(key),
			Retired: c.retired[i],
		})
	}

	return statuses
}

func keyPreview(key string) string {
	if len(key) <= 12 {
		return key
	}

	return key[:8] + "..." + key[len(key)-4:]
}

func thumbnailURL(thumbnails *youtube.ThumbnailDetails) string {
	if thumbnails == nil || thumbnails.High == nil {
		return ""
	}

	return thumbnails.High.Url
}

func parseTimestamp(value string) time.Time {
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Now()
	}

	return ts
}
