package http

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DefaultUserAgent is sent with every request unless overridden.
const DefaultUserAgent = "AudioInfoUpdater"

// Proxy modes accepted by WithProxy.
const (
	ProxyNone   = "none"
	ProxySystem = "system"
	ProxyManual = "manual"
)

// StatusError reports a response with an unexpected status code.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Status)
}

// Client wraps HTTP operations used to fetch catalog pages, audio files
// and cover art.
//
// Example usage:
//
//	client := NewClient(WithProxy("manual", "127.0.0.1", 8080))
//	html, err := client.GetString(ctx, "https://artist.bandcamp.com/album/name")
//	err = client.DownloadFile(ctx, mp3URL, "/path/to/file.mp3", nil)
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the overall request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithProxy selects how requests reach the network: "none" connects
// directly, "manual" goes through address:port, anything else uses the
// proxy from the environment.
func WithProxy(mode, address string, port int) Option {
	return func(c *Client) {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		switch strings.ToLower(mode) {
		case ProxyNone:
			transport.Proxy = nil
		case ProxyManual:
			if address == "" {
				break
			}
			host := address
			if port > 0 {
				host = net.JoinHostPort(address, strconv.Itoa(port))
			}
			proxyURL := &url.URL{Scheme: "http", Host: host}
			if u, err := url.Parse(address); err == nil && u.Scheme != "" && u.Host != "" {
				proxyURL = u
			}
			transport.Proxy = http.ProxyURL(proxyURL)
		default:
			transport.Proxy = http.ProxyFromEnvironment
		}
		c.httpClient.Transport = transport
	}
}

// WithHTTPClient replaces the underlying client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a client with a 60 second timeout and the default
// User-Agent, then applies opts.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ProgressWriter wraps a writer to track download progress.
type ProgressWriter struct {
	// Writer is the underlying writer to write data to.
	Writer io.Writer

	// Total is the expected total bytes (from Content-Length header).
	Total int64

	// Written is the current number of bytes written.
	Written int64

	// OnUpdate is called after each Write with (bytesWritten, totalExpected).
	OnUpdate func(written, total int64)
}

// Write implements io.Writer, tracking progress and calling OnUpdate.
func (pw *ProgressWriter) Write(p []byte) (int, error) {
	n, err := pw.Writer.Write(p)
	pw.Written += int64(n)
	if pw.OnUpdate != nil {
		pw.OnUpdate(pw.Written, pw.Total)
	}
	return n, err
}

func (c *Client) do(ctx context.Context, method, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &StatusError{URL: rawURL, StatusCode: resp.StatusCode, Status: resp.Status}
	}
	return resp, nil
}

// Get performs a GET request and returns the response body.
// Statuses other than 200 are returned as *StatusError.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

// GetString performs a GET request and returns the response body as a string.
func (c *Client) GetString(ctx context.Context, url string) (string, error) {
	body, err := c.Get(ctx, url)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// GetFileSize returns the size of a file at the given URL via HEAD request.
func (c *Client) GetFileSize(ctx context.Context, url string) (int64, error) {
	resp, err := c.do(ctx, http.MethodHead, url)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.ContentLength < 0 {
		return 0, fmt.Errorf("no Content-Length header for %s", url)
	}

	return resp.ContentLength, nil
}

// DownloadFile streams url to destPath with an optional progress callback.
//
// The body is written to a temporary file in the destination directory
// and renamed into place once complete, so an interrupted download never
// leaves a truncated file at destPath.
func (c *Client) DownloadFile(ctx context.Context, url, destPath string, onProgress func(written, total int64)) error {
	resp, err := c.do(ctx, http.MethodGet, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	tmp, err := os.CreateTemp(filepath.Dir(destPath), "."+filepath.Base(destPath)+".*.part")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	var writer io.Writer = tmp
	if onProgress != nil {
		writer = &ProgressWriter{
			Writer:   tmp,
			Total:    resp.ContentLength,
			OnUpdate: onProgress,
		}
	}

	if _, err := io.Copy(writer, resp.Body); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), destPath)
}

// DownloadBytes downloads a small file, such as cover art, into memory.
func (c *Client) DownloadBytes(ctx context.Context, url string) ([]byte, error) {
	return c.Get(ctx, url)
}
