package inference

import (
	"net"
	"net/http"
	"time"
)

// newHTTPClient returns the HTTP client handed to the SDK. connect bounds the
// dial and TLS handshake, read bounds the wait for response headers, and the
// client timeout caps the whole exchange at connect+read.
func newHTTPClient(connect, read time.Duration) *http.Client {
	transport := cloneDefaultTransport()
	transport.Proxy = http.ProxyFromEnvironment

	dialer := &net.Dialer{
		Timeout:   connect,
		KeepAlive: 30 * time.Second,
	}
	transport.DialContext = dialer.DialContext
	transport.ForceAttemptHTTP2 = true
	transport.MaxIdleConns = 100
	transport.IdleConnTimeout = 90 * time.Second
	transport.TLSHandshakeTimeout = connect
	transport.ResponseHeaderTimeout = read
	transport.ExpectContinueTimeout = 3 * time.Second

	return &http.Client{
		Transport: transport,
		Timeout:   connect + read,
	}
}

func cloneDefaultTransport() *http.Transport {
	return http.DefaultTransport.(*http.Transport).Clone()
}
