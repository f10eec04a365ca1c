package schoology

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dghubble/oauth1"

	"github.com/schoolwrapped/recap-backend/internal/logger"
	"github.com/schoolwrapped/recap-backend/internal/utils"
)

type Config struct {
	ConsumerKey    string
	ConsumerSecret string
	Domain         string
	APIDomain      string
}

func ConfigFromEnv(log *logger.Logger) Config {
	cfg := Config{
		ConsumerKey:    utils.GetEnv("SCHOOLOGY_CONSUMER_KEY", "", log),
		ConsumerSecret: utils.GetEnv("SCHOOLOGY_CONSUMER_SECRET", "", log),
		Domain:         utils.GetEnv("SCHOOLOGY_DOMAIN", "https://app.schoology.com", log),
		APIDomain:      utils.GetEnv("SCHOOLOGY_API_DOMAIN", "https://api.schoology.com", log),
	}
	if cfg.ConsumerKey == "" || cfg.ConsumerSecret == "" {
		log.Warn("Schoology consumer key/secret missing; OAuth will fail")
	}
	return cfg
}

// OAuthConfig builds the three-legged OAuth 1.0a configuration used by the
// auth handlers. Schoology signs with HMAC-SHA1 against the app domain.
func (cfg Config) OAuthConfig(callbackURL string) *oauth1.Config {
	base := strings.TrimRight(cfg.Domain, "/")
	return &oauth1.Config{
		ConsumerKey:    cfg.ConsumerKey,
		ConsumerSecret: cfg.ConsumerSecret,
		CallbackURL:    callbackURL,
		Endpoint: oauth1.Endpoint{
			RequestTokenURL: base + "/oauth/request_token",
			AuthorizeURL:    base + "/oauth/authorize",
			AccessTokenURL:  base + "/oauth/access_token",
		},
	}
}

// Client is an oauth1-signed reader of the Schoology REST API. It holds no
// state beyond the signed transport; nothing is cached across calls.
type Client struct {
	log        *logger.Logger
	httpClient *http.Client
	apiBase    string
}

func NewClient(cfg Config, accessToken, accessTokenSecret string, log *logger.Logger) *Client {
	oc := oauth1.NewConfig(cfg.ConsumerKey, cfg.ConsumerSecret)
	hc := oc.Client(oauth1.NoContext, oauth1.NewToken(accessToken, accessTokenSecret))
	hc.Timeout = 30 * time.Second
	return newClientWithHTTP(cfg, hc, log)
}

func newClientWithHTTP(cfg Config, hc *http.Client, log *logger.Logger) *Client {
	return &Client{
		log:        log.With("client", "SchoologyClient"),
		httpClient: hc,
		apiBase:    strings.TrimRight(cfg.APIDomain, "/"),
	}
}

// GetMe resolves the recap subject. Failure here has no fallback path and is
// fatal to the job.
func (c *Client) GetMe(ctx context.Context) (*RawUser, error) {
	body, err := c.getJSON(ctx, c.apiBase+"/v1/users/me")
	if err != nil {
		return nil, err
	}
	var me RawUser
	if err := json.Unmarshal(body, &me); err != nil {
		return nil, fmt.Errorf("decode users/me: %w", err)
	}
	return &me, nil
}

func (c *Client) getJSON(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UpstreamError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &UpstreamError{URL: url, Status: resp.StatusCode}
	}
	return io.ReadAll(resp.Body)
}
