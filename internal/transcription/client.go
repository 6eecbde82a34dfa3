package transcription

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	defaultBaseURL   = "wss://api.deepgram.com/v1/listen"
	defaultKeepAlive = 5 * time.Second
	handshakeTimeout = 10 * time.Second
	writeTimeout     = 10 * time.Second
	closeGracePeriod = 5 * time.Second
)

type Client struct {
	ws     *websocket.Conn
	cb     Callbacks
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	writeMu   sync.Mutex
	mu        sync.RWMutex
	connected bool

	keepAlive time.Duration
}

// New dials the streaming recognizer and starts the read loop. A non-2xx
// handshake is fatal: the caller reports it to the client and ends the
// exchange rather than retrying.
func New(cfg Config, opts SessionOptions, cb Callbacks) (*Client, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse recognizer url: %w", err)
	}
	u.RawQuery = buildQuery(opts)

	header := http.Header{}
	if cfg.APIKey != "" {
		header.Set("Authorization", "Token "+cfg.APIKey)
	}

	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	ws, resp, err := dialer.Dial(u.String(), header)
	if err != nil {
		if resp != nil {
			switch resp.StatusCode {
			case http.StatusUnauthorized:
				return nil, fmt.Errorf("recognizer auth rejected: %w", err)
			case http.StatusPaymentRequired:
				return nil, fmt.Errorf("recognizer usage limit reached: %w", err)
			case http.StatusTooManyRequests:
				return nil, fmt.Errorf("recognizer rate limited: %w", err)
			}
			return nil, fmt.Errorf("recognizer handshake failed (status %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("dial recognizer: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	keepAlive := cfg.KeepAliveInterval
	if keepAlive <= 0 {
		keepAlive = defaultKeepAlive
	}

	c := &Client{
		ws:        ws,
		cb:        cb,
		ctx:       ctx,
		cancel:    cancel,
		connected: true,
		keepAlive: keepAlive,
	}

	if cb.OnOpen != nil {
		cb.OnOpen()
	}

	c.wg.Add(2)
	go c.readLoop()
	go c.keepAliveLoop()

	slog.Info("recognizer connected", "url", u.Host)
	return c, nil
}

func buildQuery(opts SessionOptions) string {
	q := url.Values{}
	q.Set("encoding", opts.Encoding)
	q.Set("sample_rate", strconv.Itoa(opts.SampleRate))
	q.Set("channels", strconv.Itoa(opts.Channels))
	q.Set("smart_format", strconv.FormatBool(opts.SmartFormat))
	q.Set("interim_results", strconv.FormatBool(opts.InterimResults))
	q.Set("model", opts.Model)
	q.Set("language", opts.Language)
	q.Set("no_delay", strconv.FormatBool(opts.NoDelay))
	q.Set("endpointing", strconv.Itoa(opts.EndpointingMs))
	q.Set("vad_events", strconv.FormatBool(opts.VADEvents))
	return q.Encode()
}

func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

func (c *Client) SendAudio(pcm []byte) error {
	if !c.IsConnected() {
		return fmt.Errorf("recognizer stream not ready")
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.ws.WriteMessage(websocket.BinaryMessage, pcm)
}

type serverMessage struct {
	Type    string `json:"type"`
	IsFinal bool   `json:"is_final"`
	Channel struct {
		Alternatives []struct {
			Transcript string  `json:"transcript"`
			Confidence float64 `json:"confidence"`
		} `json:"alternatives"`
	} `json:"channel"`
	Description string `json:"description"`
	Message     string `json:"message"`
}

func (c *Client) readLoop() {
	defer c.wg.Done()
	defer c.markClosed()

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if c.ctx.Err() == nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					if c.cb.OnError != nil {
						c.cb.OnError(err)
					}
				}
			}
			if c.cb.OnClose != nil {
				c.cb.OnClose()
			}
			return
		}

		var msg serverMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			slog.Warn("recognizer sent unparseable message", "error", err)
			continue
		}

		switch msg.Type {
		case "Results":
			if len(msg.Channel.Alternatives) == 0 {
				continue
			}
			alt := msg.Channel.Alternatives[0]
			if c.cb.OnTranscript != nil {
				c.cb.OnTranscript(TranscriptEvent{
					Text:       alt.Transcript,
					IsFinal:    msg.IsFinal,
					Confidence: alt.Confidence,
				})
			}
		case "Metadata", "SpeechStarted", "UtteranceEnd":
			// Liveness only.
		case "Error":
			if c.cb.OnError != nil {
				c.cb.OnError(fmt.Errorf("recognizer error: %s", msg.Message))
			}
		default:
			slog.Debug("recognizer message ignored", "type", msg.Type)
		}
	}
}

func (c *Client) keepAliveLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.writeMu.Lock()
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			err := c.ws.WriteMessage(websocket.TextMessage, []byte(`{"type":"KeepAlive"}`))
			c.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

func (c *Client) markClosed() {
	c.mu.Lock()
	c.connected = false
	c.mu.Unlock()
}

func (c *Client) Close() error {
	c.cancel()
	c.markClosed()

	c.writeMu.Lock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(closeGracePeriod))
	_ = c.ws.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.writeMu.Unlock()

	err := c.ws.Close()
	c.wg.Wait()
	return err
}
