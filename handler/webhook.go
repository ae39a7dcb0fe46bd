package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// UpdateHandler processes one incoming Telegram update.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update tgbotapi.Update)
}

// WebhookAPI receives Telegram updates. It always answers 200 so the
// transport does not redeliver updates that failed on our side.
type WebhookAPI struct {
	bot    UpdateHandler
	logger *slog.Logger
}

func NewWebhookAPI(bot UpdateHandler, logger *slog.Logger) *WebhookAPI {
	return &WebhookAPI{
		bot:    bot,
		logger: logger,
	}
}

func (wh *WebhookAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		Message(w, http.StatusOK, "bot webhook endpoint")
		return
	}

	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		wh.logger.Error("failed to decode update", slog.String("err", err.Error()))
		Message(w, http.StatusOK, "ok")
		return
	}

	wh.bot.HandleUpdate(r.Context(), update)
	Message(w, http.StatusOK, "ok")
}
