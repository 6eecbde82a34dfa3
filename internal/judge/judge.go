package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
)

type Verdict string

const (
	VerdictComplete Verdict = "complete"
	VerdictWait     Verdict = "wait"
)

// Judge decides whether an accumulated answer looks finished. Failures of
// any kind resolve to VerdictWait: the judge may delay a conclusion but
// never forces one.
type Judge interface {
	Judge(ctx context.Context, question, fullAnswer, liveFragment string) Verdict
}

const (
	defaultBaseURL        = "https://api.groq.com/openai/v1/chat/completions"
	defaultModel          = "llama-3.3-70b-versatile"
	defaultAttemptTimeout = 8 * time.Second
	defaultMaxAttempts    = 2
	defaultBackoffBase    = 1 * time.Second
)

type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	AttemptTimeout time.Duration
	MaxAttempts    int
	BackoffBase    time.Duration
}

type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	model          string
	attemptTimeout time.Duration
	maxAttempts    int
	backoffBase    time.Duration
	log            *slog.Logger
}

func NewClient(cfg Config, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = defaultAttemptTimeout
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = defaultBackoffBase
	}

	return &Client{
		httpClient:     &http.Client{},
		baseURL:        cfg.BaseURL,
		apiKey:         cfg.APIKey,
		model:          cfg.Model,
		attemptTimeout: cfg.AttemptTimeout,
		maxAttempts:    cfg.MaxAttempts,
		backoffBase:    cfg.BackoffBase,
		log:            log,
	}
}

const promptTemplate = `You are analyzing a live technical interview. Determine if the candidate's answer is COMPLETE and we should move to next question.

QUESTION: %s

FULL ANSWER (everything said so far): %s

CURRENT/LATEST TRANSCRIPT (what they just said): %s

DECISION CRITERIA:
- If the FULL ANSWER shows BASIC UNDERSTANDING with at least 1 valid point about the core concept, respond: COMPLETE
- If the FULL ANSWER is factually correct and relevant (even if brief), respond: COMPLETE

- If CURRENT TRANSCRIPT shows the candidate is clearly MID-SENTENCE or says "um", "uh", "and", "so" indicating they want to continue, respond: WAIT
- If CURRENT TRANSCRIPT is empty or very short but FULL ANSWER is substantial and complete, respond: COMPLETE
- If both FULL ANSWER and CURRENT TRANSCRIPT suggest the candidate has finished their thought, respond: COMPLETE
- Only respond WAIT if the candidate is clearly still speaking or the CURRENT TRANSCRIPT indicates they want to add more
- Even if the current transcript and full answer are irrelevant to the question, respond: WAIT

CONTEXT ANALYSIS:
- Look at FULL ANSWER to see if the core question has been addressed
- Look at CURRENT TRANSCRIPT to see if they're still actively speaking
- Consider if the answer ends naturally or seems cut off

Respond with ONLY one word: either "COMPLETE" or "WAIT" (no explanation)`

type chatRequest struct {
	Messages    []chatMessage `json:"messages"`
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

var errRetryable = errors.New("retryable")

func (c *Client) Judge(ctx context.Context, question, fullAnswer, liveFragment string) Verdict {
	if c.apiKey == "" {
		return VerdictWait
	}

	prompt := fmt.Sprintf(promptTemplate, question, fullAnswer, liveFragment)

	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		verdict, retryAfter, err := c.attempt(ctx, prompt)
		if err == nil {
			return verdict
		}
		if !errors.Is(err, errRetryable) {
			c.log.Error("completion check failed", "error", err)
			return VerdictWait
		}

		if attempt == c.maxAttempts-1 {
			break
		}

		delay := c.backoffBase * (1 << attempt)
		if retryAfter > 0 {
			delay = retryAfter
		}
		c.log.Warn("completion check retrying", "attempt", attempt+1, "delay", delay, "error", err)

		select {
		case <-ctx.Done():
			return VerdictWait
		case <-time.After(delay):
		}
	}

	c.log.Warn("completion check attempts exhausted")
	return VerdictWait
}

func (c *Client) attempt(ctx context.Context, prompt string) (Verdict, time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
	defer cancel()

	body, err := json.Marshal(chatRequest{
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Model:       c.model,
		MaxTokens:   10,
		Temperature: 0.1,
		Stream:      false,
	})
	if err != nil {
		return VerdictWait, 0, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return VerdictWait, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return VerdictWait, 0, fmt.Errorf("%w: %v", errRetryable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return VerdictWait, parseRetryAfter(resp.Header.Get("Retry-After")), fmt.Errorf("%w: rate limited", errRetryable)
	}
	if resp.StatusCode != http.StatusOK {
		return VerdictWait, 0, fmt.Errorf("completion api returned status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return VerdictWait, 0, fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return VerdictWait, 0, nil
	}

	return Classify(parsed.Choices[0].Message.Content), 0, nil
}

// Classify maps the model's natural-language reply onto a verdict. Only an
// explicit COMPLETE token concludes; everything else waits.
func Classify(reply string) Verdict {
	if strings.Contains(strings.ToUpper(reply), "COMPLETE") {
		return VerdictComplete
	}
	return VerdictWait
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(header)); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 0
}
