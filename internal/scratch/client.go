package scratch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goliatone/go-errors"

	"github.com/potatophant/magnifier/internal/logging"
)

// TextCodeUpstreamUnavailable tags failures of the external comment feed.
const TextCodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"

// Comment is a read-only projection of a Scratch project comment. Only the
// consumed fields are typed; the author payload is kept whole for capture at
// first login.
type Comment struct {
	ID              int64     `json:"id"`
	Content         string    `json:"content"`
	Author          Author    `json:"author"`
	DatetimeCreated time.Time `json:"datetime_created"`
}

// Author identifies the external account that wrote a comment.
type Author struct {
	ID          int64  `json:"id,omitempty"`
	Username    string `json:"username"`
	ScratchTeam bool   `json:"scratchteam,omitempty"`
	Image       string `json:"image,omitempty"`
}

// Payload renders the author as the opaque profile blob persisted on the
// local user record.
func (a Author) Payload() map[string]any {
	raw, err := json.Marshal(a)
	if err != nil {
		return map[string]any{"username": a.Username}
	}

	payload := map[string]any{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return map[string]any{"username": a.Username}
	}

	return payload
}

// Config holds client options for the comment feed.
type Config struct {
	// URL of the designated project's comment feed.
	URL string

	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     logging.Logger
}

// Client reads the comment feed of a single fixed Scratch project.
type Client struct {
	url        string
	httpClient *http.Client
	logger     logging.Logger
}

func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.DefLogger{}
	}

	return &Client{
		url:        cfg.URL,
		httpClient: client,
		logger:     logger,
	}
}

// FetchComments performs a single bulk read of the feed.
func (c *Client) FetchComments(ctx context.Context) ([]Comment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "build comment feed request")
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("comment feed request failed", "url", c.url, "error", err)
		return nil, upstreamUnavailable(err, "comment feed request failed")
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		c.logger.Error("comment feed returned unexpected status", "url", c.url, "status", res.StatusCode)
		return nil, upstreamUnavailable(
			fmt.Errorf("unexpected status %d", res.StatusCode),
			"comment feed returned unexpected status",
		)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, upstreamUnavailable(err, "read comment feed response")
	}

	var comments []Comment
	if err := json.Unmarshal(body, &comments); err != nil {
		return nil, upstreamUnavailable(err, "decode comment feed response")
	}

	return comments, nil
}

// FindCommentByContent returns the first comment whose content equals the
// given string exactly, or (nil, nil) when none matches. Comparison is
// verbatim: no trimming, no case folding.
func (c *Client) FindCommentByContent(ctx context.Context, content string) (*Comment, error) {
	comments, err := c.FetchComments(ctx)
	if err != nil {
		return nil, err
	}

	for i := range comments {
		if comments[i].Content == content {
			return &comments[i], nil
		}
	}

	return nil, nil
}

func upstreamUnavailable(err error, msg string) error {
	return errors.Wrap(err, errors.CategoryOperation, msg).
		WithCode(http.StatusBadGateway).
		WithTextCode(TextCodeUpstreamUnavailable)
}
