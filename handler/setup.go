package handler

import (
	"fmt"
	"log/slog"
	"net/http"
)

// WebhookSetter registers the bot webhook with the messaging platform.
type WebhookSetter interface {
	SetWebhook(webhookURL string) error
}

// SetupAPI re-registers the Telegram webhook against the host this
// request came in on and shows the result as a small HTML page.
type SetupAPI struct {
	bot    WebhookSetter
	logger *slog.Logger
}

func NewSetupAPI(bot WebhookSetter, logger *slog.Logger) *SetupAPI {
	return &SetupAPI{
		bot:    bot,
		logger: logger,
	}
}

func (s *SetupAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	webhookURL := fmt.Sprintf("https://%s/webhook", r.Host)

	result := "✅ Webhook registered. Open the bot in Telegram and send /start."
	if err := s.bot.SetWebhook(webhookURL); err != nil {
		s.logger.Error("failed to set webhook", slog.String("err", err.Error()))
		result = fmt.Sprintf("❌ %s", err.Error())
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `<html>
<body style="font-family: sans-serif; padding: 40px;">
<h1>🤖 CommentBoost Bot Setup</h1>
<p><strong>Webhook URL:</strong> %s</p>
<p>%s</p>
</body>
</html>`, webhookURL, result)
}
