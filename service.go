package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ewintr.nl/commentboost/comments"
	"ewintr.nl/commentboost/handler"
	"ewintr.nl/commentboost/storage"
	"ewintr.nl/commentboost/sweep"
	"ewintr.nl/commentboost/telegram"
	"ewintr.nl/commentboost/youtube"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	blob, backend, err := newBlobStore(logger)
	if err != nil {
		logger.Error("unable to connect to storage", slog.String("err", err.Error()))
		os.Exit(1)
	}
	store := storage.NewStore(blob)

	apiKeys := splitKeys(getParam("YOUTUBE_API_KEYS", ""))
	yt, err := youtube.NewClient(ctx, apiKeys, logger)
	if err != nil {
		logger.Error("unable to create youtube client", slog.String("err", err.Error()))
		os.Exit(1)
	}

	groqKey := getParam("GROQ_API_KEY", "")
	drafter := comments.NewDrafter(groqKey,
		getParam("GROQ_MODEL", "llama-3.3-70b-versatile"),
		getParam("DISPLAY_LANGUAGE", "ru"))

	botToken := getParam("TELEGRAM_BOT_TOKEN", "")
	botAPI, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		logger.Error("unable to create telegram bot", slog.String("err", err.Error()))
		os.Exit(1)
	}
	bot := telegram.NewBot(botAPI, store, yt, logger)
	notifier := telegram.NewNotifier(botAPI)

	sweeper := sweep.NewSweeper(store, yt, drafter, notifier, logger)

	port, err := strconv.Atoi(getParam("API_PORT", "8080"))
	if err != nil {
		logger.Error("invalid port", slog.String("err", err.Error()))
		os.Exit(1)
	}

	server := handler.NewServer(
		handler.NewCronAPI(sweeper, getParam("CRON_SECRET", "cron123"), logger),
		handler.NewWebhookAPI(bot, logger),
		handler.NewStatusAPI(handler.StatusInfo{
			TelegramConfigured: botToken != "",
			GroqConfigured:     groqKey != "",
			StorageBackend:     backend,
		}, yt),
		handler.NewSetupAPI(bot, logger),
		logger,
	)
	go http.ListenAndServe(fmt.Sprintf(":%d", port), server)
	logger.Info("http server started", slog.Int("port", port))

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt)
	<-done

	logger.Info("service stopped")
}

func newBlobStore(logger *slog.Logger) (storage.BlobStore, string, error) {
	if host := getParam("POSTGRES_HOST", ""); host != "" {
		postgres, err := storage.NewPostgres(storage.PostgresInfo{
			Host:     host,
			Port:     getParam("POSTGRES_PORT", "5432"),
			User:     getParam("POSTGRES_USER", "commentboost"),
			Password: getParam("POSTGRES_PASSWORD", "commentboost"),
			Database: getParam("POSTGRES_DB", "commentboost"),
		})
		if err != nil {
			return nil, "", err
		}
		return postgres, "postgres", nil
	}

	if url := getParam("REDIS_URL", ""); url != "" {
		redis, err := storage.NewRedis(url)
		if err != nil {
			return nil, "", err
		}
		return redis, "redis", nil
	}

	logger.Warn("no storage configured, falling back to memory")

	return storage.NewMemory(), "memory", nil
}

func splitKeys(value string) []string {
	keys := []string{}
	for _, key := range strings.Split(value, ",") {
		key = strings.TrimSpace(key)
		if key != "" {
			keys = append(keys, key)
		}
	}

	return keys
}

func getParam(param, def string) string {
	if val, ok := os.LookupEnv(param); ok {
		return val
	}
	return def
}
