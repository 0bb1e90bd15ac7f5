package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/prismgate/console/internal/config"
	"github.com/prismgate/console/pkg/httpext"
	"github.com/rs/zerolog/log"
)

// TokenSource hands out the current access token, renewing it when
// needed. An empty string means no session.
type TokenSource interface {
	GetAccessToken(ctx context.Context) string
}

// Client performs authenticated round trips against the gateway and
// normalizes every failure into a httpext.RequestError.
type Client struct {
	httpClient *http.Client
	tokens     TokenSource
	baseURL    string
}

// RequestOptions tweaks a single request. Caller headers take
// precedence over the defaults the client injects.
type RequestOptions struct {
	Headers http.Header
	Timeout time.Duration
}

func NewClient(tokens TokenSource) *Client {
	return &Client{
		httpClient: &http.Client{},
		tokens:     tokens,
		baseURL:    config.GetGatewayBaseURL(),
	}
}

// Get performs an authenticated GET
func (c *Client) Get(ctx context.Context, path string, opts *RequestOptions) (httpext.Payload, error) {
	return c.Do(ctx, http.MethodGet, path, nil, opts)
}

// Post performs an authenticated POST with a JSON body
func (c *Client) Post(ctx context.Context, path string, body interface{}, opts *RequestOptions) (httpext.Payload, error) {
	return c.Do(ctx, http.MethodPost, path, body, opts)
}

// Put performs an authenticated PUT with a JSON body
func (c *Client) Put(ctx context.Context, path string, body interface{}, opts *RequestOptions) (httpext.Payload, error) {
	return c.Do(ctx, http.MethodPut, path, body, opts)
}

// Delete performs an authenticated DELETE
func (c *Client) Delete(ctx context.Context, path string, opts *RequestOptions) (httpext.Payload, error) {
	return c.Do(ctx, http.MethodDelete, path, nil, opts)
}

// Do performs one round trip. Paths starting with "/" are resolved
// against the gateway base URL, anything else is used as-is. A non-2xx
// response or transport failure comes back as a *httpext.RequestError.
func (c *Client) Do(ctx context.Context, method, path string, body interface{}, opts *RequestOptions) (httpext.Payload, error) {
	url := path
	if strings.HasPrefix(path, "/") {
		url = c.baseURL + path
	}

	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return httpext.Payload{}, httpext.ClassifyTransportError(err)
		}
		reader = bytes.NewBuffer(jsonData)
	}

	if opts != nil && opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return httpext.Payload{}, httpext.ClassifyTransportError(err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	// May suspend for a renewal round trip inside the token manager
	if token := c.tokens.GetAccessToken(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	if opts != nil {
		for key, values := range opts.Headers {
			req.Header.Del(key)
			for _, value := range values {
				req.Header.Add(key, value)
			}
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		reqErr := httpext.ClassifyTransportError(err)
		log.Debug().Err(err).Str("method", method).Str("url", url).Str("kind", string(reqErr.Kind)).Msg("Gateway request failed in transport")
		return httpext.Payload{}, reqErr
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return httpext.Payload{}, httpext.ClassifyTransportError(err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return httpext.Payload{}, httpext.NewStatusError(resp.StatusCode, respBody)
	}

	if strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		return httpext.DecodeLenient(respBody), nil
	}
	return httpext.TextPayload(string(respBody)), nil
}
