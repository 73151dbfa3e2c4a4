// Package assistant answers chat and voice prompts: a few spoken-style
// commands, then Gemini for everything else.
package assistant

import (
	"context"
	"errors"
	"net/url"
	"regexp"
	"strings"

	"github.com/park285/playpad-server/internal/msgcat"
	"github.com/park285/playpad-server/internal/outbound"
	"go.uber.org/zap"
)

var (
	ErrEmptyText    = errors.New("text is required")
	ErrNoGeminiKey  = errors.New("gemini api key not set")
	videoIDPattern  = regexp.MustCompile(`watch\?v=([\w-]{11})`)
	desktopOnlyApps = map[string]bool{"calculator": true, "notepad": true}
)

type Config struct {
	GeminiAPIKey     string
	GeminiURL        string
	WikipediaURL     string
	YouTubeSearchURL string
}

type Assistant struct {
	client  *outbound.Client
	catalog *msgcat.Catalog
	cfg     Config
	logger  *zap.Logger
}

func New(client *outbound.Client, catalog *msgcat.Catalog, cfg Config, logger *zap.Logger) *Assistant {
	if client == nil {
		client = outbound.NewClient()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assistant{client: client, catalog: catalog, cfg: cfg, logger: logger}
}

// Chat answers a text prompt. Without a Gemini key it returns the
// not-configured reply together with ErrNoGeminiKey. Gemini failures are
// reported in the reply text.
func (a *Assistant) Chat(ctx context.Context, text string) (string, error) {
	if reply, ok := a.Command(ctx, text); ok {
		return reply, nil
	}
	if strings.TrimSpace(a.cfg.GeminiAPIKey) == "" {
		return a.catalog.Text("assistant.gemini_no_key", nil, "Gemini API key not set."), ErrNoGeminiKey
	}
	reply, err := a.gemini(ctx, text)
	if err != nil {
		a.logger.Warn("gemini_failed", zap.Error(err))
		return a.catalog.Text("assistant.gemini_error", map[string]any{"Error": err.Error()}, "Error from Gemini: "+err.Error()), nil
	}
	return reply, nil
}

// Voice answers a transcribed utterance: commands first, then an echo.
func (a *Assistant) Voice(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyText
	}
	if reply, ok := a.Command(ctx, text); ok {
		return reply, nil
	}
	return a.catalog.Text("assistant.voice_echo", map[string]any{"Text": text}, "You said: "+text), nil
}

// Command runs a recognised command prefix. Matching is case-insensitive
// and the argument is taken from the lower-cased text.
func (a *Assistant) Command(ctx context.Context, text string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(text))
	switch {
	case strings.HasPrefix(lower, "open app "):
		name := strings.TrimSpace(strings.TrimPrefix(lower, "open app "))
		if desktopOnlyApps[name] {
			return a.catalog.Text("assistant.app_desktop_only", map[string]any{"App": name}, "Opening "+name+" is only available in the desktop app."), true
		}
		return a.catalog.Text("assistant.app_unknown", map[string]any{"App": name}, "App '"+name+"' not recognized."), true
	case strings.HasPrefix(lower, "open file "):
		path := strings.TrimSpace(strings.TrimPrefix(lower, "open file "))
		return a.catalog.Text("assistant.file_desktop_only", map[string]any{"Path": path}, "Opening files is only available in the desktop app."), true
	case strings.HasPrefix(lower, "search wikipedia for "):
		return a.wikipedia(ctx, strings.TrimSpace(strings.TrimPrefix(lower, "search wikipedia for "))), true
	case strings.HasPrefix(lower, "open song "):
		return a.song(ctx, strings.TrimSpace(strings.TrimPrefix(lower, "open song "))), true
	}
	return "", false
}

type wikiSummary struct {
	Extract string `json:"extract"`
}

func (a *Assistant) wikipedia(ctx context.Context, query string) string {
	endpoint := strings.TrimRight(a.cfg.WikipediaURL, "/") + "/" + url.PathEscape(strings.ReplaceAll(query, " ", "_"))
	var summary wikiSummary
	err := a.client.GetJSON(ctx, endpoint, &summary)
	if err == nil && strings.TrimSpace(summary.Extract) == "" {
		err = errors.New("no summary found")
	}
	if err != nil {
		a.logger.Debug("wikipedia_failed", zap.String("query", query), zap.Error(err))
		return a.catalog.Text("assistant.wikipedia_error", map[string]any{"Error": err.Error()}, "Wikipedia search error: "+err.Error())
	}
	text := firstSentences(summary.Extract, 2)
	return a.catalog.Text("assistant.wikipedia_summary", map[string]any{"Query": query, "Summary": text}, text)
}

func (a *Assistant) song(ctx context.Context, name string) string {
	endpoint := a.cfg.YouTubeSearchURL + "?search_query=" + url.QueryEscape(name)
	body, err := a.client.GetBody(ctx, endpoint)
	if err != nil {
		a.logger.Debug("youtube_search_failed", zap.String("song", name), zap.Error(err))
		return a.catalog.Text("assistant.song_error", map[string]any{"Error": err.Error()}, "Error searching for song: "+err.Error())
	}
	m := videoIDPattern.FindSubmatch(body)
	if m == nil {
		return a.catalog.Text("assistant.song_not_found", nil, "Song not found, try again.")
	}
	link := "https://www.youtube.com/watch?v=" + string(m[1])
	return a.catalog.Text("assistant.song_found", map[string]any{"Song": name, "URL": link}, link)
}

// firstSentences keeps the first n sentences ending in '.', '!' or '?'
// followed by a space or the end of text.
func firstSentences(text string, n int) string {
	text = strings.TrimSpace(text)
	count := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '.', '!', '?':
			if i+1 == len(text) || text[i+1] == ' ' || text[i+1] == '\n' {
				count++
				if count == n {
					return text[:i+1]
				}
			}
		}
	}
	return text
}
