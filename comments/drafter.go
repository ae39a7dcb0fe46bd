package comments

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/sync/errgroup"

	"ewintr.nl/commentboost/model"
)

const groqBaseURL = "https://api.groq.com/openai/v1"

const promptTemplate = `You are a YouTube viewer who just watched an interesting video. Generate 3 authentic comments in %s language.

Video Title: %s
Channel: %s
Description: %s
Tags: %s

Generate 3 different comment styles:
1. INFORMATIVE - Share a relevant fact, insight, or personal experience related to the topic
2. EMOTIONAL - Express genuine emotion (amazement, gratitude, inspiration) about the content
3. QUESTION - Ask a thoughtful question that could spark discussion

Rules:
- Write in %s language
- Be authentic, not generic
- 50-200 characters each
- No hashtags
- Maximum 2 emojis per comment
- Sound like a real person, not a bot
- Reference specific content from the video title/description

Format your response EXACTLY like this:
INFORMATIVE: [comment]
EMOTIONAL: [comment]
QUESTION: [comment]`

// Fallbacks for sections the model failed to produce in the expected
// shape. A parse problem never surfaces as an error.
const (
	fallbackInformative = "Great video!"
	fallbackEmotional   = "Amazing content!"
	fallbackQuestion    = "What do you think about this?"
)

var languageNames = map[string]string{
	"en": "English",
	"ru": "Russian",
	"de": "German",
	"es": "Spanish",
	"fr": "French",
	"pt": "Portuguese",
}

type completionClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Drafter produces comment drafts with a single model completion per
// language.
type Drafter struct {
	client          completionClient
	model           string
	displayLanguage string
}

func NewDrafter(apiKey, model, displayLanguage string) *Drafter {
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = groqBaseURL

	return &Drafter{
		client:          openai.NewClientWithConfig(config),
		model:           model,
		displayLanguage: displayLanguage,
	}
}

// Draft generates the display and copy comment sets for a video. A
// video in the display language needs one generation, reused for both
// sets. Any other language needs two, one per language, which run
// concurrently and must both finish before Draft returns.
func (d *Drafter) Draft(ctx context.Context, details *model.VideoDetails, channelName string) (*model.Draft, error) {
	language := details.Language
	if language == "" {
		language = "en"
	}

	if matchesPrimaryTag(language, d.displayLanguage) {
		set, err := d.generate(ctx, details, channelName, d.displayLanguage)
		if err != nil {
			return nil, err
		}

		return &model.Draft{Display: set, Copy: set, Language: language}, nil
	}

	var display, copySet model.CommentSet
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		display, err = d.generate(groupCtx, details, channelName, d.displayLanguage)
		return err
	})
	group.Go(func() error {
		var err error
		copySet, err = d.generate(groupCtx, details, channelName, language)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	return &model.Draft{Display: display, Copy: copySet, Language: language}, nil
}

func (d *Drafter) generate(ctx context.Context, details *model.VideoDetails, channelName, language string) (model.CommentSet, error) {
	resp, err := d.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: d.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildPrompt(details, channelName, language),
			},
		},
		Temperature: 0.8,
		MaxTokens:   500,
	})
	if err != nil {
		return model.CommentSet{}, fmt.Errorf("failed to generate comments: %w", err)
	}

	if len(resp.Choices) == 0 {
		return parseCommentSet(""), nil
	}

	return parseCommentSet(resp.Choices[0].Message.Content), nil
}

func buildPrompt(details *model.VideoDetails, channelName, language string) string {
	description := details.Description
	if runes := []rune(description); len(runes) > 500 {
		description = string(runes[:500])
	}
	tags := details.Tags
	if len(tags) > 10 {
		tags = tags[:10]
	}
	name := languageName(language)

	return fmt.Sprintf(promptTemplate, name, details.Title, channelName, description, strings.Join(tags, ", "), name)
}

func languageName(code string) string {
	primary := code
	if idx := strings.Index(primary, "-"); idx > 0 {
		primary = primary[:idx]
	}
	if name, ok := languageNames[strings.ToLower(primary)]; ok {
		return name
	}

	return code
}

// matchesPrimaryTag reports whether a video language code starts with
// the primary tag of the display language, so "ru-RU" matches "ru".
func matchesPrimaryTag(videoLanguage, displayLanguage string) bool {
	primary := displayLanguage
	if idx := strings.Index(primary, "-"); idx > 0 {
		primary = primary[:idx]
	}

	return strings.HasPrefix(strings.ToLower(videoLanguage), strings.ToLower(primary))
}

// parseCommentSet extracts the three labeled sections independently.
// Each missing or malformed section falls back to a fixed sentence,
// the others still come from the response.
func parseCommentSet(response string) model.CommentSet {
	set := model.CommentSet{
		Informative: fallbackInformative,
		Emotional:   fallbackEmotional,
		Question:    fallbackQuestion,
	}
	if text, ok := extractSection(response, "INFORMATIVE:", "EMOTIONAL:", "QUESTION:"); ok {
		set.Informative = text
	}
	if text, ok := extractSection(response, "EMOTIONAL:", "QUESTION:"); ok {
		set.Emotional = text
	}
	if text, ok := extractSection(response, "QUESTION:"); ok {
		set.Question = text
	}

	return set
}

func extractSection(response, label string, terminators ...string) (string, bool) {
	start := strings.Index(response, label)
	if start < 0 {
		return "", false
	}
	section := response[start+len(label):]
	for _, terminator := range terminators {
		if end := strings.Index(section, terminator); end >= 0 {
			section = section[:end]
		}
	}
	section = strings.TrimSpace(section)
	if section == "" {
		return "", false
	}

	return section, true
}
