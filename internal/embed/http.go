package embed

import (
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/http/httpproxy"
)

// newHTTPClient builds the client used for embedding calls. Explicit proxy
// settings override the environment; NO_PROXY is honoured either way.
func newHTTPClient(config Config, timeout time.Duration) *http.Client {
	proxy := httpproxy.FromEnvironment()
	if config.HTTPProxy != "" {
		proxy.HTTPProxy = config.HTTPProxy
	}
	if config.HTTPSProxy != "" {
		proxy.HTTPSProxy = config.HTTPSProxy
	}
	if config.NoProxy != "" {
		proxy.NoProxy = config.NoProxy
	}
	proxyFunc := proxy.ProxyFunc()

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = func(req *http.Request) (*url.URL, error) {
		return proxyFunc(req.URL)
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
