package translation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"codeberg.org/snonux/csvtrans/internal/language"
)

// DefaultGoogleEndpoint is the Google Translate v2 REST endpoint
const DefaultGoogleEndpoint = "https://www.googleapis.com/language/translate/v2"

// GoogleConfig configures a GoogleClient
type GoogleConfig struct {
	APIKey     string
	Endpoint   string
	UserAgent  string
	HTTPClient *http.Client
}

// GoogleClient calls the Google Translate v2 API with an API key passed as a
// query parameter.
type GoogleClient struct {
	apiKey    string
	endpoint  string
	userAgent string
	client    *http.Client
}

// NewGoogleClient creates a Google translation client
func NewGoogleClient(cfg GoogleConfig) (*GoogleClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("google API key is required")
	}

	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		endpoint = DefaultGoogleEndpoint
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}

	return &GoogleClient{
		apiKey:    cfg.APIKey,
		endpoint:  endpoint,
		userAgent: cfg.UserAgent,
		client:    client,
	}, nil
}

// Name returns the provider name
func (c *GoogleClient) Name() string {
	return "google"
}

// Translate translates text. Language tokens are resolved against
// language.Google.
func (c *GoogleClient) Translate(ctx context.Context, text, from, to string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", newError(c.Name(), KindInvalidInput, fmt.Errorf("text is required"))
	}

	source := language.Google.Resolve(from)
	target := language.Google.Resolve(to)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(text, source.Code, target.Code), nil)
	if err != nil {
		return "", newError(c.Name(), KindInvalidInput, fmt.Errorf("build request: %w", err))
	}
	setCommonHeaders(req, c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", transportError(c.Name(), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", transportError(c.Name(), fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errPayload googleErrorResponse
		if json.Unmarshal(body, &errPayload) == nil && strings.TrimSpace(errPayload.Error.Message) != "" {
			return "", statusError(c.Name(), resp.StatusCode, errPayload.Error.Message)
		}
		return "", statusError(c.Name(), resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed googleResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", newError(c.Name(), KindParse, fmt.Errorf("decode response: %w", err))
	}
	if parsed.Data == nil || len(parsed.Data.Translations) == 0 {
		return "", newError(c.Name(), KindParse, fmt.Errorf("response has no translations"))
	}

	return parsed.Data.Translations[0].TranslatedText, nil
}

// requestURL fills the v2 template: key, source, target, q.
func (c *GoogleClient) requestURL(text, source, target string) string {
	return fmt.Sprintf("%s?key=%s&source=%s&target=%s&q=%s",
		c.endpoint,
		url.QueryEscape(c.apiKey),
		url.QueryEscape(source),
		url.QueryEscape(target),
		url.QueryEscape(text),
	)
}

type googleResponse struct {
	Data *struct {
		Translations []struct {
			TranslatedText string `json:"translatedText"`
		} `json:"translations"`
	} `json:"data"`
}

type googleErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
