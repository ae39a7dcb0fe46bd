package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ewintr.nl/commentboost/model"
)

// ErrUnavailable marks snapshot load/save failures. The sweep treats
// these as shared-infrastructure failures and stops early.
var ErrUnavailable = errors.New("store unavailable")

const (
	snapshotKey = "bot_data"

	// maxProcessed bounds the processed list. Eviction is FIFO by
	// insertion order, so after heavy churn an old video can be
	// notified again. That staleness window is intended.
	maxProcessed = 1000
)

// Snapshot is the single persisted value: every user, profile, channel
// and processed video ID, serialized as one JSON document.
type Snapshot struct {
	Users           map[string]*model.User    `json:"users"`
	Profiles        map[string]*model.Profile `json:"profiles"`
	Channels        map[string]*model.Channel `json:"channels"`
	ProcessedVideos []string                  `json:"processed_videos"`
}

func newSnapshot() *Snapshot {
	return &Snapshot{
		Users:    map[string]*model.User{},
		Profiles: map[string]*model.Profile{},
		Channels: map[string]*model.Channel{},
	}
}

// Store reads and writes the snapshot through a BlobStore. Reads and
// writes of the snapshot are not atomic with respect to each other,
// last writer wins. Sweeps do not overlap by design, so this is
// acceptable.
type Store struct {
	blob BlobStore
}

func NewStore(blob BlobStore) *Store {
	return &Store{blob: blob}
}

func (s *Store) load(ctx context.Context) (*Snapshot, error) {
	blob, err := s.blob.GetBlob(ctx, snapshotKey)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load snapshot: %w", ErrUnavailable, err)
	}
	if blob == nil {
		return newSnapshot(), nil
	}

	var snapshot Snapshot
	if err := json.Unmarshal(blob, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if snapshot.Users == nil {
		snapshot.Users = map[string]*model.User{}
	}
	if snapshot.Profiles == nil {
		snapshot.Profiles = map[string]*model.Profile{}
	}
	if snapshot.Channels == nil {
		snapshot.Channels = map[string]*model.Channel{}
	}

	return &snapshot, nil
}

func (s *Store) save(ctx context.Context, snapshot *Snapshot) error {
	blob, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := s.blob.SetBlob(ctx, snapshotKey, blob); err != nil {
		return fmt.Errorf("%w: failed to save snapshot: %w", ErrUnavailable, err)
	}

	return nil
}

func (s *Store) GetOrCreateUser(ctx context.Context, userID int64) (*model.User, error) {
	snapshot, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	key := userKey(userID)
	if user, ok := snapshot.Users[key]; ok {
		return user, nil
	}

	user := &model.User{
		ID:        userID,
		CreatedAt: time.Now(),
	}
	snapshot.Users[key] = user
	if err := s.save(ctx, snapshot); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *Store) SetActiveProfile(ctx context.Context, userID int64, profileID string) error {
	snapshot, err := s.load(ctx)
	if err != nil {
		return err
	}
	user, ok := snapshot.Users[userKey(userID)]
	if !ok {
		return nil
	}
	user.ActiveProfileID = profileID

	return s.save(ctx, snapshot)
}

func (s *Store) CreateProfile(ctx context.Context, userID int64, name string) (*model.Profile, error) {
	snapshot, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	profile := model.NewProfile(userID, name)
	snapshot.Profiles[profile.ID] = profile
	if err := s.save(ctx, snapshot); err != nil {
		return nil, err
	}

	return profile, nil
}

func (s *Store) Profiles(ctx context.Context, userID int64) ([]*model.Profile, error) {
	snapshot, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	profiles := []*model.Profile{}
	for _, profile := range snapshot.Profiles {
		if profile.UserID == userID {
			profiles = append(profiles, profile)
		}
	}

	return profiles, nil
}

func (s *Store) ProfileByID(ctx context.Context, profileID string) (*model.Profile, error) {
	snapshot, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	return snapshot.Profiles[profileID], nil
}

func (s *Store) AddChannel(ctx context.Context, profileID string, youtubeID model.YoutubeChannelID, name string, subscriberCount uint64) (*model.Channel, error) {
	snapshot, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	channel := model.NewChannel(profileID, youtubeID, name, subscriberCount)
	snapshot.Channels[channel.ID] = channel
	if err := s.save(ctx, snapshot); err != nil {
		return nil, err
	}

	return channel, nil
}

func (s *Store) Channels(ctx context.Context, profileID string) ([]*model.Channel, error) {
	snapshot, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	channels := []*model.Channel{}
	for _, channel := range snapshot.Channels {
		if channel.ProfileID == profileID {
			channels = append(channels, channel)
		}
	}

	return channels, nil
}

func (s *Store) AllChannels(ctx context.Context) ([]*model.Channel, error) {
	snapshot, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	channels := []*model.Channel{}
	for _, channel := range snapshot.Channels {
		channels = append(channels, channel)
	}

	return channels, nil
}

func (s *Store) IsProcessed(ctx context.Context, videoID model.YoutubeVideoID) (bool, error) {
	snapshot, err := s.load(ctx)
	if err != nil {
		return false, err
	}
	for _, id := range snapshot.ProcessedVideos {
		if id == string(videoID) {
			return true, nil
		}
	}

	return false, nil
}

// MarkProcessed appends the video ID unless it is already present and
// truncates the list to the newest maxProcessed entries. Calling it
// repeatedly for the same ID does not grow the list.
func (s *Store) MarkProcessed(ctx context.Context, videoID model.YoutubeVideoID) error {
	snapshot, err := s.load(ctx)
	if err != nil {
		return err
	}
	for _, id := range snapshot.ProcessedVideos {
		if id == string(videoID) {
			return nil
		}
	}
	snapshot.ProcessedVideos = append(snapshot.ProcessedVideos, string(videoID))
	if len(snapshot.ProcessedVideos) > maxProcessed {
		snapshot.ProcessedVideos = snapshot.ProcessedVideos[len(snapshot.ProcessedVideos)-maxProcessed:]
	}

	return s.save(ctx, snapshot)
}

func userKey(userID int64) string {
	return fmt.Sprintf("%d", userID)
}
