package translation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"codeberg.org/snonux/csvtrans/internal/language"
)

const (
	// DefaultBingTokenURL issues access tokens for client id / secret pairs
	DefaultBingTokenURL = "https://datamarket.accesscontrol.windows.net/v2/OAuth2-13"
	// DefaultBingEndpoint is the Microsoft Translator V2 Ajax translate method
	DefaultBingEndpoint = "https://api.microsofttranslator.com/V2/Ajax.svc/Translate"

	bingScope = "http://api.microsofttranslator.com"

	// tokens are refreshed this long before they expire
	tokenRefreshMargin = 30 * time.Second
	defaultTokenTTL    = 10 * time.Minute
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// BingConfig configures a BingClient
type BingConfig struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	Endpoint     string
	UserAgent    string
	HTTPClient   *http.Client
}

// BingClient calls the Microsoft Translator API. Client credentials are
// exchanged for a bearer token which is cached until shortly before expiry.
type BingClient struct {
	clientID     string
	clientSecret string
	tokenURL     string
	endpoint     string
	userAgent    string
	client       *http.Client
	now          func() time.Time

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewBingClient creates a Bing translation client
func NewBingClient(cfg BingConfig) (*BingClient, error) {
	if strings.TrimSpace(cfg.ClientID) == "" || strings.TrimSpace(cfg.ClientSecret) == "" {
		return nil, fmt.Errorf("bing client id and secret are required")
	}

	tokenURL := strings.TrimSpace(cfg.TokenURL)
	if tokenURL == "" {
		tokenURL = DefaultBingTokenURL
	}
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		endpoint = DefaultBingEndpoint
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}

	return &BingClient{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		tokenURL:     tokenURL,
		endpoint:     endpoint,
		userAgent:    cfg.UserAgent,
		client:       client,
		now:          time.Now,
	}, nil
}

// Name returns the provider name
func (c *BingClient) Name() string {
	return "bing"
}

// Translate translates text. Language tokens are resolved against
// language.Bing.
func (c *BingClient) Translate(ctx context.Context, text, from, to string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", newError(c.Name(), KindInvalidInput, fmt.Errorf("text is required"))
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		return "", err
	}

	source := language.Bing.Resolve(from)
	target := language.Bing.Resolve(to)

	query := url.Values{}
	query.Set("text", text)
	query.Set("from", source.Code)
	query.Set("to", target.Code)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return "", newError(c.Name(), KindInvalidInput, fmt.Errorf("build request: %w", err))
	}
	setCommonHeaders(req, c.userAgent)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", transportError(c.Name(), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", transportError(c.Name(), fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.invalidateToken()
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", statusError(c.Name(), resp.StatusCode, strings.TrimSpace(string(body)))
	}

	body = bytes.TrimPrefix(body, utf8BOM)
	var translated string
	if err := json.Unmarshal(body, &translated); err != nil {
		return "", newError(c.Name(), KindParse, fmt.Errorf("decode response: %w", err))
	}

	return translated, nil
}

func (c *BingClient) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("scope", bingScope)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", newError(c.Name(), KindInvalidInput, fmt.Errorf("build token request: %w", err))
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	setCommonHeaders(req, c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", transportError(c.Name(), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", transportError(c.Name(), fmt.Errorf("read token response: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", statusError(c.Name(), resp.StatusCode, "token request failed: "+strings.TrimSpace(string(body)))
	}

	var parsed bingTokenResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", newError(c.Name(), KindParse, fmt.Errorf("decode token response: %w", err))
	}
	if strings.TrimSpace(parsed.AccessToken) == "" {
		return "", newError(c.Name(), KindParse, fmt.Errorf("token response has no access_token"))
	}

	ttl := defaultTokenTTL
	if seconds, err := strconv.Atoi(parsed.ExpiresIn.String()); err == nil && seconds > 0 {
		ttl = time.Duration(seconds) * time.Second
	}
	if ttl > tokenRefreshMargin {
		ttl -= tokenRefreshMargin
	}

	c.token = parsed.AccessToken
	c.tokenExpiry = c.now().Add(ttl)
	return c.token, nil
}

func (c *BingClient) invalidateToken() {
	c.mu.Lock()
	c.token = ""
	c.tokenExpiry = time.Time{}
	c.mu.Unlock()
}

// expires_in is a quoted number in the token service response.
type bingTokenResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresIn   json.Number `json:"expires_in"`
	Scope       string      `json:"scope"`
}
