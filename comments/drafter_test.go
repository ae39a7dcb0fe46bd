package comments

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/sashabaranov/go-openai"

	"ewintr.nl/commentboost/model"
)

const goodResponse = `INFORMATIVE: I tried this technique last month and it works.
EMOTIONAL: This is exactly the push I needed today! 🙌
QUESTION: Which part took you the longest to figure out?`

type fakeCompleter struct {
	response string
	err      error
	barrier  *sync.WaitGroup

	mu      sync.Mutex
	prompts []string
}

func (f *fakeCompleter) CreateChatCompletion(_ context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	if f.barrier != nil {
		// both language generations must be in flight at the same
		// time, otherwise this blocks forever
		f.barrier.Done()
		f.barrier.Wait()
	}
	f.mu.Lock()
	f.prompts = append(f.prompts, request.Messages[0].Content)
	f.mu.Unlock()
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}

	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: f.response}},
		},
	}, nil
}

func testDetails(language string) *model.VideoDetails {
	return &model.VideoDetails{
		Video: model.Video{
			ID:          "vid-1",
			Title:       "How to grow tomatoes",
			Description: "A full guide to growing tomatoes on a balcony.",
		},
		Tags:     []string{"garden", "tomatoes"},
		Language: language,
	}
}

func TestDraftSameLanguage(t *testing.T) {
	completer := &fakeCompleter{response: goodResponse}
	drafter := &Drafter{client: completer, model: "test-model", displayLanguage: "ru"}

	draft, err := drafter.Draft(context.Background(), testDetails("ru-RU"), "Garden Channel")
	if err != nil {
		t.Fatal(err)
	}

	if len(completer.prompts) != 1 {
		t.Errorf("generation calls = %d, want 1", len(completer.prompts))
	}
	if draft.Display != draft.Copy {
		t.Errorf("Display = %+v, Copy = %+v, want identical sets", draft.Display, draft.Copy)
	}
	if draft.Language != "ru-RU" {
		t.Errorf("Language = %q, want ru-RU", draft.Language)
	}
}

func TestDraftDifferentLanguage(t *testing.T) {
	barrier := &sync.WaitGroup{}
	barrier.Add(2)
	completer := &fakeCompleter{response: goodResponse, barrier: barrier}
	drafter := &Drafter{client: completer, model: "test-model", displayLanguage: "ru"}

	draft, err := drafter.Draft(context.Background(), testDetails("en"), "Garden Channel")
	if err != nil {
		t.Fatal(err)
	}

	if len(completer.prompts) != 2 {
		t.Fatalf("generation calls = %d, want 2", len(completer.prompts))
	}
	joined := strings.Join(completer.prompts, "\n---\n")
	if !strings.Contains(joined, "in Russian language") {
		t.Errorf("no Russian generation in prompts:\n%s", joined)
	}
	if !strings.Contains(joined, "in English language") {
		t.Errorf("no English generation in prompts:\n%s", joined)
	}
	if draft.Display.Informative == "" || draft.Copy.Informative == "" {
		t.Errorf("draft has empty sets: %+v", draft)
	}
}

func TestDraftGenerationFailure(t *testing.T) {
	boom := errors.New("model unavailable")
	completer := &fakeCompleter{err: boom}
	drafter := &Drafter{client: completer, model: "test-model", displayLanguage: "ru"}

	if _, err := drafter.Draft(context.Background(), testDetails("en"), "Garden Channel"); !errors.Is(err, boom) {
		t.Errorf("Draft() = %v, want wrapped model error", err)
	}
}

func TestDraftMissingLanguageDefaultsToEnglish(t *testing.T) {
	completer := &fakeCompleter{response: goodResponse}
	drafter := &Drafter{client: completer, model: "test-model", displayLanguage: "en"}

	draft, err := drafter.Draft(context.Background(), testDetails(""), "Garden Channel")
	if err != nil {
		t.Fatal(err)
	}
	if len(completer.prompts) != 1 {
		t.Errorf("generation calls = %d, want 1", len(completer.prompts))
	}
	if draft.Language != "en" {
		t.Errorf("Language = %q, want en", draft.Language)
	}
}

func TestParseCommentSet(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     model.CommentSet
	}{
		{
			name:     "all sections present",
			response: goodResponse,
			want: model.CommentSet{
				Informative: "I tried this technique last month and it works.",
				Emotional:   "This is exactly the push I needed today! 🙌",
				Question:    "Which part took you the longest to figure out?",
			},
		},
		{
			name:     "missing emotional falls back for that slot only",
			response: "INFORMATIVE: Solid overview of the basics.\nQUESTION: What soil do you use?",
			want: model.CommentSet{
				Informative: "Solid overview of the basics.",
				Emotional:   fallbackEmotional,
				Question:    "What soil do you use?",
			},
		},
		{
			name:     "empty response",
			response: "",
			want: model.CommentSet{
				Informative: fallbackInformative,
				Emotional:   fallbackEmotional,
				Question:    fallbackQuestion,
			},
		},
		{
			name:     "chatter around the labels",
			response: "Sure, here are the comments:\n\nINFORMATIVE: Nice trick with the twine.\nEMOTIONAL: Wow, the harvest shots are stunning! 🍅\nQUESTION: Do you water daily?\n\nHope that helps!",
			want: model.CommentSet{
				Informative: "Nice trick with the twine.",
				Emotional:   "Wow, the harvest shots are stunning! 🍅",
				Question:    "Do you water daily?\n\nHope that helps!",
			},
		},
		{
			name:     "label with empty section",
			response: "INFORMATIVE:\nEMOTIONAL: Loved this.\nQUESTION: More videos like this?",
			want: model.CommentSet{
				Informative: fallbackInformative,
				Emotional:   "Loved this.",
				Question:    "More videos like this?",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseCommentSet(tt.response); got != tt.want {
				t.Errorf("parseCommentSet() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	details := testDetails("en")
	details.Description = strings.Repeat("x", 800)
	details.Tags = []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"}

	prompt := buildPrompt(details, "Garden Channel", "en")
	if strings.Contains(prompt, strings.Repeat("x", 501)) {
		t.Errorf("description was not truncated to 500 characters")
	}
	if strings.Contains(prompt, ", k") {
		t.Errorf("more than 10 tags in prompt")
	}
	if !strings.Contains(prompt, "a, b, c, d, e, f, g, h, i, j") {
		t.Errorf("first 10 tags missing from prompt")
	}
	if !strings.Contains(prompt, "Garden Channel") {
		t.Errorf("channel name missing from prompt")
	}
}

func TestMatchesPrimaryTag(t *testing.T) {
	tests := []struct {
		video   string
		display string
		want    bool
	}{
		{video: "ru", display: "ru", want: true},
		{video: "ru-RU", display: "ru", want: true},
		{video: "RU", display: "ru", want: true},
		{video: "en", display: "ru", want: false},
		{video: "en-US", display: "en-GB", want: true},
		{video: "de", display: "en", want: false},
	}

	for _, tt := range tests {
		if got := matchesPrimaryTag(tt.video, tt.display); got != tt.want {
			t.Errorf("matchesPrimaryTag(%q, %q) = %v, want %v", tt.video, tt.display, got, tt.want)
		}
	}
}
