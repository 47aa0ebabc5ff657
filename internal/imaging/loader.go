package imaging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // Register WebP format decoder
	"golang.org/x/net/proxy"
)

// Fetch failure classes. Every error returned by Fetcher.Fetch wraps exactly
// one of them.
var (
	// ErrFetch covers an invalid URL, a failed or interrupted request, and a
	// non-2xx response.
	ErrFetch = errors.New("cannot fetch image")

	// ErrDecode is returned when a fully received body is not a usable image.
	// Bodies cut short by MaxBodyBytes and memory pressure during decoding
	// surface here too.
	ErrDecode = errors.New("cannot decode image")
)

// Defaults for FetcherOptions fields left at their zero value.
const (
	DefaultTimeout   = 60 * time.Second
	DefaultUserAgent = "top3colors/1.0"
)

// FetcherOptions configures a Fetcher.
type FetcherOptions struct {
	// Timeout bounds a whole request, body included. Zero uses DefaultTimeout.
	Timeout time.Duration

	// UserAgent is sent with every request. Empty uses DefaultUserAgent.
	UserAgent string

	// MaxBodyBytes caps how much of a response body is read. Zero means no cap.
	// A body cut short by the cap normally fails to decode.
	MaxBodyBytes int64

	// Proxy is an optional proxy URL such as "socks5://127.0.0.1:9050".
	Proxy string
}

// Fetcher downloads and decodes images over HTTP.
//
// One Fetcher is built per run and shared by all workers; it holds no
// per-request state, so Fetch is safe for concurrent use.
type Fetcher struct {
	client       *http.Client
	userAgent    string
	maxBodyBytes int64
}

// NewFetcher builds a Fetcher and its HTTP client.
func NewFetcher(opts FetcherOptions) (*Fetcher, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if opts.Proxy != "" {
		dialer, err := proxyDialer(opts.Proxy)
		if err != nil {
			return nil, err
		}
		transport.Proxy = nil
		transport.DialContext = dialer
	}

	return &Fetcher{
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		userAgent:    opts.UserAgent,
		maxBodyBytes: opts.MaxBodyBytes,
	}, nil
}

// proxyDialer turns a proxy URL into a DialContext function for the transport.
func proxyDialer(rawURL string) (func(ctx context.Context, network, addr string) (net.Conn, error), error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy URL %q: %w", rawURL, err)
	}
	d, err := proxy.FromURL(u, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("unsupported proxy %q: %w", rawURL, err)
	}
	if cd, ok := d.(proxy.ContextDialer); ok {
		return cd.DialContext, nil
	}
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return d.Dial(network, addr)
	}, nil
}

// Fetch downloads rawURL and decodes the body into a DecodedImage.
//
// Parameters:
//   - ctx: Cancels the request and the body transfer.
//   - rawURL: An absolute http or https URL.
//
// Returns:
//   - *DecodedImage: The decoded pixels, owned by the caller until Release.
//   - error: Wraps ErrFetch or ErrDecode.
//
// # Errors
//
// The body is read in full before decoding, so a transfer that fails midway
// (dropped connection, timeout, cancellation) wraps ErrFetch together with
// an invalid URL, an unsupported scheme and a non-2xx status. ErrDecode is
// returned only for bytes that arrived intact but are not a usable image,
// including a body cut short by MaxBodyBytes. Nothing is retried.
//
// Supported formats are JPEG, PNG, GIF, BMP, TIFF and WebP. The response
// body is closed before Fetch returns on every path.
//
// # Example
//
//	img, err := f.Fetch(ctx, "https://example.com/photo.jpg")
//	if err != nil {
//	    return err
//	}
//	colors := imaging.Top3(img)
//	img.Release()
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*DecodedImage, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrFetch, u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status %s", ErrFetch, resp.Status)
	}

	var body io.Reader = resp.Body
	if f.maxBodyBytes > 0 {
		body = io.LimitReader(resp.Body, f.maxBodyBytes)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", ErrFetch, ctx.Err())
		}
		return nil, fmt.Errorf("%w: reading body: %w", ErrFetch, err)
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if b := img.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: empty image", ErrDecode)
	}

	return NewDecodedImage(rawURL, img), nil
}
