package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"
)

/* ---------------- Prompt ---------------- */

const suggestPrompt = "Create a list of three open-ended and engaging questions formatted as a single string. " +
	"Each question should be separated by '||'. These questions are for an anonymous social messaging platform, " +
	"like Qooh.me, and should be suitable for a diverse audience. Avoid personal or sensitive topics, focusing " +
	"instead on universal themes that encourage friendly interaction. For example, your output should be " +
	"structured like this: 'What's a hobby you've recently started? ||If you could have dinner with any historical " +
	"figure, who would it be?|| What's a simple thing that makes you happy?'. Ensure the questions are intriguing, " +
	"foster curiosity, and contribute to a positive and welcoming conversational environment."

/* ---------------- OpenAI payloads ---------------- */

type openAICompletionReq struct {
	Model     string `json:"model"`
	Prompt    string `json:"prompt"`
	MaxTokens int    `json:"max_tokens"`
	Stream    bool   `json:"stream"`
}

// openAIStreamChunk covers both completion ("text") and chat ("delta.content") chunks.
type openAIStreamChunk struct {
	Choices []struct {
		Text  string `json:"text"`
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

type openAIErrorBody struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	} `json:"error"`
}

// upstreamError is relayed to the caller unchanged: {name,status,headers,message}.
type upstreamError struct {
	Name    string            `json:"name"`
	Status  int               `json:"status"`
	Headers map[string]string `json:"headers"`
	Message string            `json:"message"`
}

func (e *upstreamError) Error() string { return fmt.Sprintf("%d %s", e.Status, e.Message) }

var suggestClient = &http.Client{Timeout: 120 * time.Second}

/* ---------------- Handler ---------------- */

// POST /api/suggest-messages
// Sends the fixed prompt upstream with stream=true and relays text tokens as they arrive.
// The request context is the upstream context, so a caller disconnect aborts generation.
func handleSuggestMessages(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if key == "" {
		suggestRequests.WithLabelValues("misconfigured").Inc()
		errorJSON(w, http.StatusInternalServerError, "server missing OPENAI_API_KEY")
		return
	}
	apiModel := strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if apiModel == "" {
		apiModel = "chatgpt-4o-latest"
	}
	base := strings.TrimRight(strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")), "/")
	if base == "" {
		base = "https://api.openai.com"
	}
	org := strings.TrimSpace(os.Getenv("OPENAI_ORG")) // optional

	payload, _ := json.Marshal(openAICompletionReq{
		Model:     apiModel,
		Prompt:    suggestPrompt,
		MaxTokens: 400,
		Stream:    true,
	})
	httpReq, err := http.NewRequestWithContext(r.Context(), http.MethodPost, base+"/v1/completions", bytes.NewReader(payload))
	if err != nil {
		failSuggest(w, err)
		return
	}
	httpReq.Header.Set("Authorization", "Bearer "+key)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	if org != "" {
		httpReq.Header.Set("OpenAI-Organization", org)
	}

	resp, err := suggestClient.Do(httpReq)
	if err != nil {
		if r.Context().Err() != nil {
			suggestRequests.WithLabelValues("canceled").Inc()
			log.Printf("[suggest-messages] caller went away before upstream answered")
			return
		}
		failSuggest(w, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		ue := readUpstreamError(resp)
		suggestRequests.WithLabelValues("upstream_error").Inc()
		log.Printf("[suggest-messages] upstream error: %v", ue)
		writeJSON(w, ue.Status, ue)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)

	n, err := relayCompletionStream(w, resp.Body)
	switch {
	case r.Context().Err() != nil:
		suggestRequests.WithLabelValues("canceled").Inc()
		log.Printf("[suggest-messages] caller disconnected after %d bytes", n)
	case err != nil:
		// headers are gone; all we can do is cut the body short
		suggestRequests.WithLabelValues("stream_error").Inc()
		log.Printf("[suggest-messages] stream failed after %d bytes: %v", n, err)
	default:
		suggestRequests.WithLabelValues("ok").Inc()
	}
}

func failSuggest(w http.ResponseWriter, err error) {
	suggestRequests.WithLabelValues("fault").Inc()
	log.Printf("[suggest-messages] an unexpected error occurred: %v", err)
	errorJSON(w, http.StatusInternalServerError, "An unexpected error occurred")
}

// relayCompletionStream parses server-sent events from the upstream body and writes
// each text fragment to w, flushing after every write. It returns the bytes written.
func relayCompletionStream(w http.ResponseWriter, body io.Reader) (int, error) {
	rc := http.NewResponseController(w)
	sc := bufio.NewScanner(body)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	written := 0
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !strings.HasPrefix(line, "data:") {
			continue // blank separators, comments, event names
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "[DONE]" {
			return written, nil
		}
		var chunk openAIStreamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return written, fmt.Errorf("decode chunk: %w", err)
		}
		if chunk.Error != nil {
			return written, fmt.Errorf("upstream stream error (%s): %s", chunk.Error.Type, chunk.Error.Message)
		}
		for _, c := range chunk.Choices {
			text := c.Text
			if text == "" {
				text = c.Delta.Content
			}
			if text == "" {
				continue
			}
			n, err := io.WriteString(w, text)
			written += n
			if err != nil {
				return written, err
			}
			if err := rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
				return written, err
			}
		}
	}
	return written, sc.Err()
}

// readUpstreamError maps a non-2xx upstream response to the relayed error shape,
// keeping the upstream status and error.message verbatim.
func readUpstreamError(resp *http.Response) *upstreamError {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	msg := ""
	var body openAIErrorBody
	if json.Unmarshal(raw, &body) == nil {
		msg = body.Error.Message
	}
	if msg == "" {
		msg = strings.TrimSpace(string(raw))
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	headers := make(map[string]string, len(resp.Header))
	for k := range resp.Header {
		headers[strings.ToLower(k)] = resp.Header.Get(k)
	}
	return &upstreamError{
		Name:    upstreamErrorName(resp.StatusCode),
		Status:  resp.StatusCode,
		Headers: headers,
		Message: msg,
	}
}

func upstreamErrorName(status int) string {
	switch {
	case status == http.StatusBadRequest:
		return "BadRequestError"
	case status == http.StatusUnauthorized:
		return "AuthenticationError"
	case status == http.StatusForbidden:
		return "PermissionDeniedError"
	case status == http.StatusNotFound:
		return "NotFoundError"
	case status == http.StatusConflict:
		return "ConflictError"
	case status == http.StatusUnprocessableEntity:
		return "UnprocessableEntityError"
	case status == http.StatusTooManyRequests:
		return "RateLimitError"
	case status >= 500:
		return "InternalServerError"
	default:
		return "APIError"
	}
}
