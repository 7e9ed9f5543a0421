// Package dropbox implements the thin remote-call client for the Dropbox
// HTTP API: folder listing, temporary links and token revocation.
package dropbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const (
	// DefaultBaseURL is the Dropbox RPC endpoint domain
	DefaultBaseURL = "https://api.dropboxapi.com"

	listFolderPath         = "/2/files/list_folder"
	listFolderContinuePath = "/2/files/list_folder/continue"
	temporaryLinkPath      = "/2/files/get_temporary_link"
	tokenRevokePath        = "/2/auth/token/revoke"

	// maxErrorBodyBytes bounds how much of a provider error payload is
	// retained for logging
	maxErrorBodyBytes = 512
)

// Config defines the configuration for the Dropbox client
type Config struct {
	// BaseURL overrides the API domain, used by tests
	BaseURL string
	// Timeout is the per-request time limit
	Timeout time.Duration
	// RetryMax is the maximum number of retry attempts
	RetryMax int
}

// Client calls the Dropbox RPC endpoints with bearer authentication
type Client struct {
	baseURL string
	http    *retryablehttp.Client
}

// Entry is one item of a folder listing as returned by the provider
type Entry struct {
	Tag       string `json:".tag"`
	Name      string `json:"name"`
	PathLower string `json:"path_lower"`
}

// ListFolderResult is the provider response for one page of a folder listing
type ListFolderResult struct {
	Entries []Entry `json:"entries"`
	Cursor  string  `json:"cursor"`
	HasMore bool    `json:"has_more"`
}

type temporaryLinkResult struct {
	Link string `json:"link"`
}

// NewClient creates a Dropbox client from the given configuration.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	httpClient := retryablehttp.NewClient()
	httpClient.RetryMax = cfg.RetryMax
	httpClient.HTTPClient.Timeout = cfg.Timeout
	httpClient.Logger = nil

	return &Client{
		baseURL: cfg.BaseURL,
		http:    httpClient,
	}
}

// ListFolder lists one page of entries for the given path. The root folder
// is addressed by the empty string, never by "/".
func (c *Client) ListFolder(ctx context.Context, token, path string) (*ListFolderResult, error) {
	var result ListFolderResult
	if err := c.rpc(ctx, token, listFolderPath, map[string]string{"path": path}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListFolderContinue fetches the next page of a listing from a cursor.
func (c *Client) ListFolderContinue(ctx context.Context, token, cursor string) (*ListFolderResult, error) {
	var result ListFolderResult
	if err := c.rpc(ctx, token, listFolderContinuePath, map[string]string{"cursor": cursor}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetTemporaryLink fetches a short-lived signed URL for one file path.
func (c *Client) GetTemporaryLink(ctx context.Context, token, path string) (string, error) {
	var result temporaryLinkResult
	if err := c.rpc(ctx, token, temporaryLinkPath, map[string]string{"path": path}, &result); err != nil {
		return "", err
	}
	return result.Link, nil
}

// RevokeToken invalidates the access token at the provider.
func (c *Client) RevokeToken(ctx context.Context, token string) error {
	return c.rpc(ctx, token, tokenRevokePath, nil, nil)
}

// rpc performs one bearer-authenticated JSON POST against the API domain.
func (c *Client) rpc(ctx context.Context, token, path string, body, out interface{}) error {
	var rawBody []byte
	if body != nil {
		var err error
		rawBody, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, rawBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return fmt.Errorf("%s returned status %d: %s", path, resp.StatusCode, bytes.TrimSpace(excerpt))
	}

	if out == nil {
		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}
