// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package arbitration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// geminiAPIBase is the Gemini generateContent endpoint root. Declared as
// a var so tests can substitute an httptest server.
var geminiAPIBase = "https://generativelanguage.googleapis.com/v1beta"

const defaultVerifierModel = "gemini-2.0-flash"

// GeminiVerifier asks a Gemini model to arbitrate between candidates.
// It requests a JSON answer and converts every transport, status, or
// parsing problem into a *VerificationError.
type GeminiVerifier struct {
	Client *http.Client
	APIKey string
	Model  string
}

// NewGeminiVerifier creates a verifier with the given key and model.
func NewGeminiVerifier(apiKey, model string, timeout time.Duration) *GeminiVerifier {
	if model == "" {
		model = defaultVerifierModel
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &GeminiVerifier{
		Client: &http.Client{Timeout: timeout},
		APIKey: apiKey,
		Model:  model,
	}
}

// Gemini API JSON structures.
type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	Temperature      float64 `json:"temperature"`
	ResponseMimeType string  `json:"responseMimeType"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Verify implements Client against the Gemini API.
func (v *GeminiVerifier) Verify(ctx context.Context, req Request) (Response, error) {
	if v.APIKey == "" {
		return Response{}, &VerificationError{Reason: "no API key"}
	}

	body := geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: buildPrompt(req)}},
		}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:      0,
			ResponseMimeType: "application/json",
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return Response{}, &VerificationError{Reason: "encoding request", Err: err}
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", geminiAPIBase, v.Model, v.APIKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return Response{}, &VerificationError{Reason: "creating request", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := v.Client.Do(httpReq)
	if err != nil {
		return Response{}, &VerificationError{Reason: "transport", Err: err}
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return Response{}, &VerificationError{Reason: fmt.Sprintf("HTTP %d", httpResp.StatusCode)}
	}

	var gr geminiResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&gr); err != nil {
		return Response{}, &VerificationError{Reason: "parsing response", Err: err}
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return Response{}, &VerificationError{Reason: "empty response"}
	}

	var resp Response
	text := gr.Candidates[0].Content.Parts[0].Text
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &resp); err != nil {
		return Response{}, &VerificationError{Reason: "malformed answer", Err: err}
	}
	if resp.ChosenCode == "" {
		return Response{}, &VerificationError{Reason: "answer has no chosen_code"}
	}
	return resp, nil
}

// buildPrompt renders the arbitration question. The model sees every
// candidate's code, name, unit, parameters, and composition and must
// answer with one of the listed codes.
func buildPrompt(req Request) string {
	var b strings.Builder
	b.WriteString("You match construction work descriptions to normative catalog entries.\n")
	fmt.Fprintf(&b, "Work item: %q, unit of measure: %q.\n\nCandidates:\n", req.Description, req.Unit)

	for i, c := range req.Candidates {
		fmt.Fprintf(&b, "%d. code=%s name=%q unit=%q", i+1, c.Code, c.Name, c.Unit)
		if len(c.Parameters) > 0 {
			params, _ := json.Marshal(c.Parameters)
			fmt.Fprintf(&b, " parameters=%s", params)
		}
		if c.Composition != "" {
			fmt.Fprintf(&b, " composition=%q", c.Composition)
		}
		b.WriteString("\n")
	}

	b.WriteString("\nPick the single best matching candidate. Respond with JSON only: ")
	b.WriteString(`{"chosen_code": "<code from the list>", "rationale": "<one sentence>"}`)
	return b.String()
}

// stripCodeFence removes a surrounding markdown code fence if the model
// ignored the JSON mime type.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
