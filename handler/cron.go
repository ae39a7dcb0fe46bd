package handler

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"ewintr.nl/commentboost/sweep"
)

// SweepRunner runs one sweep over all tracked channels.
type SweepRunner interface {
	Run(ctx context.Context) (*sweep.Summary, error)
}

// CronAPI triggers a sweep. It is called by an external scheduler on a
// fixed interval and protected by a shared-secret bearer token.
type CronAPI struct {
	sweeper SweepRunner
	secret  string
	logger  *slog.Logger
}

func NewCronAPI(sweeper SweepRunner, secret string, logger *slog.Logger) *CronAPI {
	return &CronAPI{
		sweeper: sweeper,
		secret:  secret,
		logger:  logger,
	}
}

func (c *CronAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	auth := r.Header.Get("Authorization")
	expected := "Bearer " + c.secret
	if subtle.ConstantTimeCompare([]byte(auth), []byte(expected)) != 1 {
		Error(w, http.StatusUnauthorized, "unauthorized", fmt.Errorf("invalid bearer token"))
		return
	}

	summary, err := c.sweeper.Run(r.Context())
	if err != nil {
		c.logger.Error("sweep failed", slog.String("err", err.Error()))
		Error(w, http.StatusInternalServerError, "sweep failed", err)
		return
	}

	response := struct {
		OK              bool `json:"ok"`
		ChannelsChecked int  `json:"channelsChecked"`
		NewVideosFound  int  `json:"newVideosFound"`
	}{
		OK:              true,
		ChannelsChecked: summary.ChannelsChecked,
		NewVideosFound:  summary.NewVideosFound,
	}
	body, err := json.Marshal(response)
	if err != nil {
		Error(w, http.StatusInternalServerError, "could not marshal response", err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
