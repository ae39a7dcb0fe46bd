package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ewintr.nl/commentboost/model"
)

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier delivers formatted messages to a user. Delivery failures
// are returned to the caller and not retried here.
type Notifier struct {
	send sender
}

func NewNotifier(bot *tgbotapi.BotAPI) *Notifier {
	return &Notifier{send: bot}
}

// SendVideoNotification sends one message with the video summary and
// all three comment pairs. Free text from the video is escaped for
// MarkdownV2, copy comments sit in code spans and stay verbatim so
// they can be copied with one tap.
func (n *Notifier) SendVideoNotification(chatID int64, video model.Video, channelName string, draft *model.Draft) error {
	msg := tgbotapi.NewMessage(chatID, formatVideoNotification(video, channelName, draft))
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	if _, err := n.send.Send(msg); err != nil {
		return fmt.Errorf("failed to deliver notification: %w", err)
	}

	return nil
}

func formatVideoNotification(video model.Video, channelName string, draft *model.Draft) string {
	var b strings.Builder

	b.WriteString("🎬 *New video\\!*\n\n")
	fmt.Fprintf(&b, "📺 *%s*\n", escape(channelName))
	fmt.Fprintf(&b, "%s\n\n", escape(video.Title))
	fmt.Fprintf(&b, "🔗 %s", escape(video.URL()))

	if draft.Display != draft.Copy {
		fmt.Fprintf(&b, "\n\n🌐 _Video language: %s\\. Copy comments are in the video language\\._",
			escape(strings.ToUpper(draft.Language)))
	}

	b.WriteString("\n\n💬 *Comments:*\n")
	writeCommentPair(&b, "1️⃣", "Informative", draft.Display.Informative, draft.Copy.Informative)
	writeCommentPair(&b, "2️⃣", "Emotional", draft.Display.Emotional, draft.Copy.Emotional)
	writeCommentPair(&b, "3️⃣", "Question", draft.Display.Question, draft.Copy.Question)

	b.WriteString("\n_Tap the boxed text to copy it\\._")

	return b.String()
}

func writeCommentPair(b *strings.Builder, marker, style, display, copyText string) {
	fmt.Fprintf(b, "\n%s *%s:*\n", marker, style)
	fmt.Fprintf(b, "%s\n", escape(display))
	fmt.Fprintf(b, "📋 `%s`\n", copyText)
}

func escape(text string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, text)
}
