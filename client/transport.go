package client

import (
	"net/http"
	"net/url"

	"golang.org/x/net/http/httpproxy"
)

const contentTypeJSON = "application/json"

// Transport is an http.RoundTripper that stamps outgoing requests with the
// client's fixed headers: the JSON content type and the user agent.
//
// Use NewTransport to create a Transport with a configured *http.Transport
// for proxy, TLS, and timeout settings.
type Transport struct {
	base      http.RoundTripper
	userAgent string
}

// NewTransport creates a Transport that delegates to base after setting
// headers. When base is nil, a clone of http.DefaultTransport is used with
// its proxy taken from proxy, or from the environment when proxy is empty.
func NewTransport(base *http.Transport, userAgent, proxy string) *Transport {
	var rt http.RoundTripper
	if base != nil {
		rt = base
	} else {
		t := http.DefaultTransport.(*http.Transport).Clone()
		t.Proxy = proxyFunc(proxy)
		rt = t
	}

	return &Transport{
		base:      rt,
		userAgent: userAgent,
	}
}

// RoundTrip sets the headers and then delegates to the base transport.
// The original request is cloned to avoid mutation.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())

	clone.Header.Set("Content-Type", contentTypeJSON)
	clone.Header.Set("Accept", contentTypeJSON)
	if t.userAgent != "" {
		clone.Header.Set("User-Agent", t.userAgent)
	}

	return t.base.RoundTrip(clone)
}

// proxyFunc selects the proxy for a request. An explicit proxy applies to
// both http and https; otherwise HTTP_PROXY, HTTPS_PROXY and NO_PROXY are
// honoured.
func proxyFunc(proxy string) func(*http.Request) (*url.URL, error) {
	cfg := httpproxy.FromEnvironment()
	if proxy != "" {
		cfg.HTTPProxy = proxy
		cfg.HTTPSProxy = proxy
	}

	fn := cfg.ProxyFunc()

	return func(req *http.Request) (*url.URL, error) {
		return fn(req.URL)
	}
}
