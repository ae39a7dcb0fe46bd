package sweep

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ewintr.nl/commentboost/model"
	"ewintr.nl/commentboost/storage"
	"ewintr.nl/commentboost/youtube"
)

const videoLookback = 3

// VideoSource lists recent videos and resolves full metadata.
type VideoSource interface {
	LatestVideos(ctx context.Context, channelID model.YoutubeChannelID, max int64) ([]model.Video, error)
	VideoDetails(ctx context.Context, videoID model.YoutubeVideoID) (*model.VideoDetails, error)
}

// Drafter generates the comment sets for a video.
type Drafter interface {
	Draft(ctx context.Context, details *model.VideoDetails, channelName string) (*model.Draft, error)
}

// Notifier delivers a video notification to a user.
type Notifier interface {
	SendVideoNotification(chatID int64, video model.Video, channelName string, draft *model.Draft) error
}

// ChannelResult is the outcome for one channel in a sweep.
type ChannelResult struct {
	ChannelID model.YoutubeChannelID
	Name      string
	NewVideos int
	Err       error
}

// Summary is what one sweep accomplished.
type Summary struct {
	ChannelsChecked int
	NewVideosFound  int
	Channels        []ChannelResult
}

// Sweeper runs one pass over all tracked channels. Channels are
// processed sequentially and independently, a failure in one never
// aborts the rest. Credential exhaustion and storage failures are
// shared-infrastructure failures and abort the remaining sweep.
type Sweeper struct {
	store    *storage.Store
	source   VideoSource
	drafter  Drafter
	notifier Notifier
	now      func() time.Time
	logger   *slog.Logger
}

func NewSweeper(store *storage.Store, source VideoSource, drafter Drafter, notifier Notifier, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		store:    store,
		source:   source,
		drafter:  drafter,
		notifier: notifier,
		now:      time.Now,
		logger:   logger,
	}
}

// Run performs one sweep. The returned summary is valid even when the
// sweep was aborted halfway by a shared-infrastructure failure.
func (s *Sweeper) Run(ctx context.Context) (*Summary, error) {
	channels, err := s.store.AllChannels(ctx)
	if err != nil {
		return &Summary{}, fmt.Errorf("failed to list channels: %w", err)
	}
	s.logger.Info("starting sweep", slog.Int("channels", len(channels)))

	summary := &Summary{ChannelsChecked: len(channels)}
	for _, channel := range channels {
		result := ChannelResult{ChannelID: channel.YoutubeID, Name: channel.Name}
		result.NewVideos, result.Err = s.sweepChannel(ctx, channel)
		summary.NewVideosFound += result.NewVideos
		summary.Channels = append(summary.Channels, result)

		if result.Err == nil {
			continue
		}
		if abortsSweep(result.Err) {
			s.logger.Error("aborting sweep", slog.String("err", result.Err.Error()))
			return summary, result.Err
		}
		s.logger.Error("failed to check channel",
			slog.String("channel", channel.Name), slog.String("err", result.Err.Error()))
	}

	s.logger.Info("sweep done", slog.Int("new_videos", summary.NewVideosFound))

	return summary, nil
}

func (s *Sweeper) sweepChannel(ctx context.Context, channel *model.Channel) (int, error) {
	videos, err := s.source.LatestVideos(ctx, channel.YoutubeID, videoLookback)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch latest videos: %w", err)
	}

	newVideos := 0
	for _, video := range videos {
		notified, err := s.processVideo(ctx, channel, video)
		if err != nil {
			return newVideos, err
		}
		if notified {
			newVideos++
		}
	}

	return newVideos, nil
}

func (s *Sweeper) processVideo(ctx context.Context, channel *model.Channel, video model.Video) (bool, error) {
	if !Fresh(video.PublishedAt, s.now()) {
		return false, nil
	}
	processed, err := s.store.IsProcessed(ctx, video.ID)
	if err != nil {
		return false, err
	}
	if processed {
		return false, nil
	}

	s.logger.Info("new video found",
		slog.String("channel", channel.Name), slog.String("title", video.Title))

	details, err := s.source.VideoDetails(ctx, video.ID)
	if errors.Is(err, youtube.ErrVideoNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to fetch video details: %w", err)
	}

	draft, err := s.drafter.Draft(ctx, details, channel.Name)
	if err != nil {
		return false, fmt.Errorf("failed to draft comments: %w", err)
	}

	owner, err := s.owner(ctx, channel)
	if err != nil {
		return false, err
	}
	if owner == 0 {
		// Orphaned channel. Mark processed anyway so the sweep does
		// not retry the same video forever.
		if err := s.store.MarkProcessed(ctx, video.ID); err != nil {
			return false, err
		}
		return false, nil
	}

	if err := s.notifier.SendVideoNotification(owner, details.Video, channel.Name, draft); err != nil {
		return false, err
	}
	if err := s.store.MarkProcessed(ctx, video.ID); err != nil {
		return false, err
	}

	return true, nil
}

func (s *Sweeper) owner(ctx context.Context, channel *model.Channel) (int64, error) {
	profile, err := s.store.ProfileByID(ctx, channel.ProfileID)
	if err != nil {
		return 0, err
	}
	if profile == nil {
		return 0, nil
	}

	return profile.UserID, nil
}

func abortsSweep(err error) bool {
	return errors.Is(err, youtube.ErrAllKeysExhausted) || errors.Is(err, storage.ErrUnavailable)
}
