package assistant

import (
	"context"
	"strings"
)

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// gemini sends a single-turn generateContent request and returns the first
// candidate's first text part.
func (a *Assistant) gemini(ctx context.Context, prompt string) (string, error) {
	req := geminiRequest{Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}}}
	headers := map[string]string{"X-goog-api-key": a.cfg.GeminiAPIKey}

	var resp geminiResponse
	if err := a.client.PostJSON(ctx, a.cfg.GeminiURL, headers, req, &resp); err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 || strings.TrimSpace(resp.Candidates[0].Content.Parts[0].Text) == "" {
		return a.catalog.Text("assistant.gemini_empty", nil, "No response from Gemini."), nil
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}
