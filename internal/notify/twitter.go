package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dghubble/oauth1"
)

const twitterTweetsUrl = "https://api.twitter.com/2/tweets"

type TwitterCredentials struct {
	ApiKey            string
	ApiSecret         string
	AccessToken       string
	AccessTokenSecret string
}

// TwitterSink posts each notification as a tweet with OAuth 1.0a user
// context.
type TwitterSink struct {
	endpoint   string
	httpClient *http.Client
}

// NewTwitterSink signs requests with creds. A zero timeout leaves requests
// bounded only by the publish context.
func NewTwitterSink(creds TwitterCredentials, timeout time.Duration) (*TwitterSink, error) {
	if creds.ApiKey == "" || creds.ApiSecret == "" || creds.AccessToken == "" || creds.AccessTokenSecret == "" {
		return nil, errors.New("twitter sink requires api key, api secret, access token and access token secret")
	}
	cfg := oauth1.NewConfig(creds.ApiKey, creds.ApiSecret)
	token := oauth1.NewToken(creds.AccessToken, creds.AccessTokenSecret)
	httpClient := cfg.Client(oauth1.NoContext, token)
	httpClient.Timeout = timeout
	return &TwitterSink{
		endpoint:   twitterTweetsUrl,
		httpClient: httpClient,
	}, nil
}

func (s *TwitterSink) Publish(ctx context.Context, message string) error {
	body, err := json.Marshal(map[string]string{"text": message})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build tweet request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("tweet request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("twitter returned status %d: %s", resp.StatusCode, string(detail))
	}
	return nil
}
