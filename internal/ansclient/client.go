// Package ansclient is a small HTTP client for the ANS API.
package ansclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ans/internal/ans/handler"
	"ans/pkg/domain"
	dErrors "ans/pkg/domain-errors"
)

// Client talks to one ANS server. Token is sent as a bearer token on every
// request when set.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ResolveName uses the query form so any string, the empty one included,
// reaches the server.
func (c *Client) ResolveName(ctx context.Context, name string) (*handler.NameResponse, error) {
	var out handler.NameResponse
	if err := c.do(ctx, http.MethodGet, "/v1/names?"+nameQuery(name), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ResolveAddress(ctx context.Context, addr domain.Address) (*handler.AddressResponse, error) {
	var out handler.AddressResponse
	if err := c.do(ctx, http.MethodGet, "/v1/addresses/"+addr.Hex(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Owner(ctx context.Context) (*handler.OwnerResponse, error) {
	var out handler.OwnerResponse
	if err := c.do(ctx, http.MethodGet, "/v1/owner", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AssignName binds name to the address the token identifies.
func (c *Client) AssignName(ctx context.Context, name string) (*handler.NameResponse, error) {
	var out handler.NameResponse
	if err := c.do(ctx, http.MethodPost, "/v1/names", handler.AssignNameRequest{Name: name}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SetStorageAddress(ctx context.Context, addr domain.Address) error {
	return c.do(ctx, http.MethodPut, "/v1/admin/storage", handler.SetStorageRequest{Address: addr.Hex()}, nil)
}

func (c *Client) TransferStorageOwnership(ctx context.Context, newOwner domain.Address) error {
	return c.do(ctx, http.MethodPut, "/v1/admin/storage/owner", handler.TransferOwnershipRequest{NewOwner: newOwner.Hex()}, nil)
}

func (c *Client) RenounceStorageOwnership(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/v1/admin/storage/owner", nil, nil)
}

// StorageOwner reads the storage component's address and current owner.
func (c *Client) StorageOwner(ctx context.Context) (*handler.StorageResponse, error) {
	var out handler.StorageResponse
	if err := c.do(ctx, http.MethodGet, "/v1/storage/owner", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StorageAssignName writes name for addr directly to storage. Only the
// storage owner's token succeeds.
func (c *Client) StorageAssignName(ctx context.Context, addr domain.Address, name string) (*handler.NameResponse, error) {
	var out handler.NameResponse
	req := handler.StorageAssignRequest{Address: addr.Hex(), Name: name}
	if err := c.do(ctx, http.MethodPost, "/v1/storage/names", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) StorageResolveName(ctx context.Context, name string) (*handler.NameResponse, error) {
	var out handler.NameResponse
	if err := c.do(ctx, http.MethodGet, "/v1/storage/names?"+nameQuery(name), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) StorageResolveAddress(ctx context.Context, addr domain.Address) (*handler.AddressResponse, error) {
	var out handler.AddressResponse
	if err := c.do(ctx, http.MethodGet, "/v1/storage/addresses/"+addr.Hex(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) StorageTransferOwnership(ctx context.Context, newOwner domain.Address) error {
	return c.do(ctx, http.MethodPut, "/v1/storage/owner", handler.TransferOwnershipRequest{NewOwner: newOwner.Hex()}, nil)
}

func (c *Client) StorageRenounceOwnership(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/v1/storage/owner", nil, nil)
}

func nameQuery(name string) string {
	return url.Values{"name": {name}}.Encode()
}

type errorBody struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// do sends body as JSON and decodes a 2xx response into out. Error responses
// come back as domain errors carrying the server's code.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var eb errorBody
		if err := json.NewDecoder(resp.Body).Decode(&eb); err != nil || eb.Error == "" {
			return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
		}
		msg := eb.ErrorDescription
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return dErrors.New(dErrors.Code(eb.Error), msg)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
