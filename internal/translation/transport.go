package translation

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultUserAgent mimics a desktop browser; both endpoints accept it.
	DefaultUserAgent = "Mozilla/5.0 (Windows; U; Windows NT 5.1; en-US; rv:1.9.2.3) Gecko/20100401"
	// DefaultTimeout bounds a single provider request.
	DefaultTimeout = 30 * time.Second

	defaultCharset = "UTF-8"
)

// ProxyConfig describes an optional HTTP proxy
type ProxyConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

// Enabled reports whether a proxy host is configured
func (p ProxyConfig) Enabled() bool {
	return strings.TrimSpace(p.Host) != ""
}

// URL returns the proxy URL including credentials when set
func (p ProxyConfig) URL() (*url.URL, error) {
	if p.Port <= 0 || p.Port >= 65536 {
		return nil, fmt.Errorf("proxy port must be between 1 and 65535, got %d", p.Port)
	}

	u := &url.URL{
		Scheme: "http",
		Host:   net.JoinHostPort(strings.TrimSpace(p.Host), strconv.Itoa(p.Port)),
	}
	if p.Username != "" {
		u.User = url.UserPassword(p.Username, p.Password)
	}
	return u, nil
}

// HTTPConfig holds the settings shared by both provider clients
type HTTPConfig struct {
	Timeout time.Duration
	Proxy   ProxyConfig
}

// NewHTTPClient builds the http.Client used by the providers
func NewHTTPClient(cfg HTTPConfig) (*http.Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.Proxy.Enabled() {
		proxyURL, err := cfg.Proxy.URL()
		if err != nil {
			return nil, err
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}, nil
}

var (
	hostnameOnce sync.Once
	hostname     string
)

func localHostname() string {
	hostnameOnce.Do(func() {
		hostname, _ = os.Hostname()
	})
	return hostname
}

func setCommonHeaders(req *http.Request, userAgent string) {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Charset", defaultCharset)
	req.Header.Set("Cache-Control", "no-cache")
	if host := localHostname(); host != "" {
		req.Header.Set("Referer", host)
	}
}
