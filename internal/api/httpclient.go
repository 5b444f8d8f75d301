package api

import (
	"net"
	"net/http"
	"net/http/cookiejar"
	"time"
)

// NewHTTPClient creates the HTTP client used in live mode. The cookie jar
// carries the backend session between calls.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	dialer := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	// cookiejar.New never fails without options
	jar, _ := cookiejar.New(nil)

	return &http.Client{
		Timeout: timeout,
		Jar:     jar,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			DialContext:         dialer.DialContext,
			MaxIdleConns:        100,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}
}
