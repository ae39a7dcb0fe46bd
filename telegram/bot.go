package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ewintr.nl/commentboost/model"
	"ewintr.nl/commentboost/storage"
	"ewintr.nl/commentboost/youtube"
)

const startText = `🎯 *CommentBoost Bot*

I watch the channels of your competitors and draft comments for you the moment they publish a new video\.

%s

*Commands:*
/profile \- create a profile
/add \- track a channel
/channels \- list tracked channels
/help \- help`

const helpText = `📖 *How it works:*

1️⃣ Create a profile: /profile MyNiche
2️⃣ Track competitor channels: /add @channelname
3️⃣ Wait for new video notifications
4️⃣ Copy the drafted comments

*Commands:*
/profile \[name\] \- create a profile
/add \[channel\] \- track a channel
/channels \- list tracked channels
/myid \- your Telegram ID`

// ChannelResolver finds a channel by URL, handle or name and fetches
// its details.
type ChannelResolver interface {
	ResolveChannel(ctx context.Context, input string) (model.YoutubeChannelID, string, error)
	ChannelDetails(ctx context.Context, channelID model.YoutubeChannelID) (*model.ChannelDetails, error)
}

// Bot handles incoming Telegram updates. Only explicit "not found"
// replies reach the user, everything else stays in the logs.
type Bot struct {
	api      *tgbotapi.BotAPI
	send     sender
	store    *storage.Store
	resolver ChannelResolver
	logger   *slog.Logger
}

func NewBot(api *tgbotapi.BotAPI, store *storage.Store, resolver ChannelResolver, logger *slog.Logger) *Bot {
	return &Bot{
		api:      api,
		send:     api,
		store:    store,
		resolver: resolver,
		logger:   logger,
	}
}

func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	message := update.Message

	var err error
	switch {
	case message.IsCommand():
		err = b.handleCommand(ctx, message)
	case strings.Contains(message.Text, "youtube.com") || strings.HasPrefix(message.Text, "@"):
		err = b.addChannel(ctx, message, message.Text)
	}
	if err != nil {
		b.logger.Error("failed to handle update",
			slog.Int64("chat", message.Chat.ID), slog.String("err", err.Error()))
	}
}

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) error {
	switch message.Command() {
	case "start":
		return b.start(ctx, message)
	case "help":
		return b.replyMarkdown(message.Chat.ID, helpText)
	case "myid":
		return b.replyMarkdown(message.Chat.ID, fmt.Sprintf("🆔 Your ID: `%d`", message.From.ID))
	case "profile":
		return b.createProfile(ctx, message)
	case "add":
		return b.addChannel(ctx, message, message.CommandArguments())
	case "channels":
		return b.listChannels(ctx, message)
	}

	return nil
}

func (b *Bot) start(ctx context.Context, message *tgbotapi.Message) error {
	user, err := b.store.GetOrCreateUser(ctx, message.From.ID)
	if err != nil {
		return err
	}
	profiles, err := b.store.Profiles(ctx, user.ID)
	if err != nil {
		return err
	}

	state := "📝 Create a profile to get started"
	if len(profiles) > 0 {
		state = "✅ You already have profiles"
	}

	return b.replyMarkdown(message.Chat.ID, fmt.Sprintf(startText, state))
}

func (b *Bot) createProfile(ctx context.Context, message *tgbotapi.Message) error {
	name := strings.TrimSpace(message.CommandArguments())
	if name == "" {
		return b.reply(message.Chat.ID, "Give the profile a name: /profile MyNiche")
	}

	user, err := b.store.GetOrCreateUser(ctx, message.From.ID)
	if err != nil {
		return err
	}
	profile, err := b.store.CreateProfile(ctx, user.ID, name)
	if err != nil {
		return err
	}
	if err := b.store.SetActiveProfile(ctx, user.ID, profile.ID); err != nil {
		return err
	}

	return b.replyMarkdown(message.Chat.ID,
		fmt.Sprintf("✅ Profile *%s* created\\!\n\nNow track some channels: /add @channelname", escape(name)))
}

func (b *Bot) addChannel(ctx context.Context, message *tgbotapi.Message, input string) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return b.reply(message.Chat.ID, "Give me a channel: /add @channelname or a link")
	}

	user, err := b.store.GetOrCreateUser(ctx, message.From.ID)
	if err != nil {
		return err
	}
	if user.ActiveProfileID == "" {
		return b.reply(message.Chat.ID, "Create a profile first: /profile MyNiche")
	}

	if err := b.reply(message.Chat.ID, "🔍 Checking the channel..."); err != nil {
		return err
	}

	channelID, _, err := b.resolver.ResolveChannel(ctx, input)
	if errors.Is(err, youtube.ErrChannelNotFound) {
		return b.reply(message.Chat.ID, "❌ Channel not found. Check the link or the name.")
	}
	if err != nil {
		return err
	}
	details, err := b.resolver.ChannelDetails(ctx, channelID)
	if errors.Is(err, youtube.ErrChannelNotFound) {
		return b.reply(message.Chat.ID, "❌ Could not fetch channel details")
	}
	if err != nil {
		return err
	}

	if _, err := b.store.AddChannel(ctx, user.ActiveProfileID, channelID, details.Name, details.SubscriberCount); err != nil {
		return err
	}

	return b.replyMarkdown(message.Chat.ID,
		fmt.Sprintf("✅ Channel *%s* added\\!\n\n📊 %d subscribers", escape(details.Name), details.SubscriberCount))
}

func (b *Bot) listChannels(ctx context.Context, message *tgbotapi.Message) error {
	user, err := b.store.GetOrCreateUser(ctx, message.From.ID)
	if err != nil {
		return err
	}
	if user.ActiveProfileID == "" {
		return b.reply(message.Chat.ID, "Create a profile first: /profile MyNiche")
	}
	channels, err := b.store.Channels(ctx, user.ActiveProfileID)
	if err != nil {
		return err
	}
	if len(channels) == 0 {
		return b.reply(message.Chat.ID, "No channels tracked yet. Add one: /add @channelname")
	}

	var list strings.Builder
	for i, channel := range channels {
		fmt.Fprintf(&list, "%d\\. %s\n", i+1, escape(channel.Name))
	}

	return b.replyMarkdown(message.Chat.ID, fmt.Sprintf("📺 *Your channels:*\n\n%s", list.String()))
}

// SetWebhook points the Telegram webhook at the given URL, replacing
// any previous registration.
func (b *Bot) SetWebhook(webhookURL string) error {
	if _, err := b.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}
	webhook, err := tgbotapi.NewWebhook(webhookURL)
	if err != nil {
		return fmt.Errorf("failed to build webhook config: %w", err)
	}
	if _, err := b.api.Request(webhook); err != nil {
		return fmt.Errorf("failed to set webhook: %w", err)
	}

	return nil
}

func (b *Bot) reply(chatID int64, text string) error {
	_, err := b.send.Send(tgbotapi.NewMessage(chatID, text))

	return err
}

func (b *Bot) replyMarkdown(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	_, err := b.send.Send(msg)

	return err
}
