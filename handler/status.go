package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"ewintr.nl/commentboost/youtube"
)

// KeyReporter reports the state of the configured API keys.
type KeyReporter interface {
	KeyStatus() []youtube.KeyStatus
}

// StatusInfo describes what the operator configured. Filled in once at
// startup.
type StatusInfo struct {
	TelegramConfigured bool
	GroqConfigured     bool
	StorageBackend     string
}

// StatusAPI reports configuration health for the operator.
type StatusAPI struct {
	info StatusInfo
	keys KeyReporter
}

func NewStatusAPI(info StatusInfo, keys KeyReporter) *StatusAPI {
	return &StatusAPI{
		info: info,
		keys: keys,
	}
}

func (s *StatusAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	keyStatuses := s.keys.KeyStatus()
	response := struct {
		OK        bool   `json:"ok"`
		Timestamp string `json:"timestamp"`
		Config    struct {
			TelegramBot    bool   `json:"telegram_bot"`
			YoutubeAPIKeys int    `json:"youtube_api_keys"`
			GroqAPI        bool   `json:"groq_api"`
			Storage        string `json:"storage"`
		} `json:"config"`
		YoutubeKeys []youtube.KeyStatus `json:"youtube_keys"`
	}{
		OK:          true,
		Timestamp:   time.Now().Format(time.RFC3339),
		YoutubeKeys: keyStatuses,
	}
	response.Config.TelegramBot = s.info.TelegramConfigured
	response.Config.YoutubeAPIKeys = len(keyStatuses)
	response.Config.GroqAPI = s.info.GroqConfigured
	response.Config.Storage = s.info.StorageBackend

	body, err := json.Marshal(response)
	if err != nil {
		Error(w, http.StatusInternalServerError, "could not marshal response", err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
