package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"ewintr.nl/commentboost/sweep"
)

type fakeSweeper struct {
	summary *sweep.Summary
	err     error
	runs    int
}

func (f *fakeSweeper) Run(_ context.Context) (*sweep.Summary, error) {
	f.runs++

	return f.summary, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCronAPIAuth(t *testing.T) {
	tests := []struct {
		name       string
		auth       string
		wantStatus int
		wantRuns   int
	}{
		{
			name:       "no header",
			auth:       "",
			wantStatus: http.StatusUnauthorized,
			wantRuns:   0,
		},
		{
			name:       "wrong token",
			auth:       "Bearer wrong",
			wantStatus: http.StatusUnauthorized,
			wantRuns:   0,
		},
		{
			name:       "token without scheme",
			auth:       "s3cret",
			wantStatus: http.StatusUnauthorized,
			wantRuns:   0,
		},
		{
			name:       "valid token",
			auth:       "Bearer s3cret",
			wantStatus: http.StatusOK,
			wantRuns:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sweeper := &fakeSweeper{summary: &sweep.Summary{ChannelsChecked: 2, NewVideosFound: 1}}
			api := NewCronAPI(sweeper, "s3cret", testLogger())

			r := httptest.NewRequest(http.MethodPost, "/", nil)
			if tt.auth != "" {
				r.Header.Set("Authorization", tt.auth)
			}
			w := httptest.NewRecorder()
			api.ServeHTTP(w, r)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if sweeper.runs != tt.wantRuns {
				t.Errorf("runs = %d, want %d", sweeper.runs, tt.wantRuns)
			}
		})
	}
}

func TestCronAPISummary(t *testing.T) {
	sweeper := &fakeSweeper{summary: &sweep.Summary{ChannelsChecked: 3, NewVideosFound: 2}}
	api := NewCronAPI(sweeper, "s3cret", testLogger())

	r := httptest.NewRequest(http.MethodPost, "/", nil)
	r.Header.Set("Authorization", "Bearer s3cret")
	w := httptest.NewRecorder()
	api.ServeHTTP(w, r)

	var response struct {
		OK              bool `json:"ok"`
		ChannelsChecked int  `json:"channelsChecked"`
		NewVideosFound  int  `json:"newVideosFound"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatal(err)
	}
	if !response.OK || response.ChannelsChecked != 3 || response.NewVideosFound != 2 {
		t.Errorf("response = %+v, want ok with 3 channels and 2 videos", response)
	}
}

func TestCronAPISweepFailure(t *testing.T) {
	sweeper := &fakeSweeper{summary: &sweep.Summary{}, err: errors.New("store unreachable")}
	api := NewCronAPI(sweeper, "s3cret", testLogger())

	r := httptest.NewRequest(http.MethodPost, "/", nil)
	r.Header.Set("Authorization", "Bearer s3cret")
	w := httptest.NewRecorder()
	api.ServeHTTP(w, r)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}
