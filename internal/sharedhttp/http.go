package sharedhttp

import (
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/avast/retry-go"
)

const UserAgent = "dolabella"

var Transport = &http.Transport{
	Proxy: http.ProxyFromEnvironment,
	DialContext: (&net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
	ForceAttemptHTTP2:     true,
	MaxIdleConns:          100,
	MaxIdleConnsPerHost:   10,
	IdleConnTimeout:       90 * time.Second,
	TLSHandshakeTimeout:   10 * time.Second,
	ExpectContinueTimeout: 1 * time.Second,
	ReadBufferSize:        65536,
	WriteBufferSize:       65536,
	TLSClientConfig: &tls.Config{
		MinVersion: tls.VersionTLS12,
	},
}

// NewClient returns a client on the shared transport.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: Transport,
	}
}

// CheckStatusCode classifies a status code for retry.Do: nil for success,
// a retryable error for transient failures, retry.Unrecoverable otherwise.
func CheckStatusCode(statusCode int) error {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return nil

	case statusCode == http.StatusTooManyRequests:
		return fmt.Errorf("rate limited - retrying: status code %d", statusCode)

	case statusCode == http.StatusUnauthorized, statusCode == http.StatusForbidden:
		return retry.Unrecoverable(fmt.Errorf("unauthorized: status code %d", statusCode))

	case statusCode == http.StatusMethodNotAllowed:
		return retry.Unrecoverable(fmt.Errorf("method not allowed: status code %d", statusCode))

	case statusCode == http.StatusNotFound:
		return retry.Unrecoverable(fmt.Errorf("not found: status code %d", statusCode))

	case statusCode >= 500:
		return fmt.Errorf("server error - retrying: status code %d", statusCode)

	default:
		return retry.Unrecoverable(fmt.Errorf("unexpected status code %d", statusCode))
	}
}

// ExecRequest runs req and returns the whole body if the status is acceptable.
// The response body is always closed.
func ExecRequest(client *http.Client, req *http.Request) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if err := CheckStatusCode(resp.StatusCode); err != nil {
		return body, err
	}

	return body, nil
}
