// Package backend is a typed client of the hosted backend-as-a-service the
// storefront runs on: its auth endpoints, the auto-generated REST layer over
// the course tables and the stored-procedure gateway.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config points the client at one project of the provider.
type Config struct {
	BaseURL string
	AnonKey string
	Timeout time.Duration
}

type Client struct {
	baseURL  string
	anonKey  string
	http     *http.Client
	logger   *log.Logger
	validate *validator.Validate
}

func New(cfg Config, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		anonKey:  cfg.AnonKey,
		http:     &http.Client{Timeout: timeout},
		logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

type request struct {
	method  string
	path    string
	query   url.Values
	token   string
	body    any
	headers map[string]string
}

// do sends req and returns the status and body of a 2xx response.
// Any other status becomes an *HTTPError carrying the response body.
func (c *Client) do(ctx context.Context, req request) (int, []byte, error) {
	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return 0, nil, fmt.Errorf("encode %s body: %w", req.path, err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return 0, nil, err
	}
	httpReq.Header.Set("apikey", c.anonKey)
	httpReq.Header.Set("Accept", "application/json")
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	bearer := req.token
	if bearer == "" {
		bearer = c.anonKey
	}
	if bearer != "" {
		httpReq.Header.Set("Authorization", "Bearer "+bearer)
	}
	for k, v := range req.headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s: %w", req.method, req.path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read %s response: %w", req.path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Printf("backend %s %s: status %d", req.method, req.path, resp.StatusCode)
		return resp.StatusCode, data, &HTTPError{Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	return resp.StatusCode, data, nil
}

// decode unmarshals a provider response into out and validates it against
// the struct tags of the target schema.
func (c *Client) decode(what string, data []byte, out any) error {
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &SchemaError{What: what, Err: err}
	}
	if err := c.check(out); err != nil {
		return &SchemaError{What: what, Err: err}
	}
	return nil
}

func (c *Client) check(out any) error {
	v := reflect.ValueOf(out)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Struct:
		return c.validate.Struct(v.Addr().Interface())
	case reflect.Slice:
		if k := v.Type().Elem().Kind(); k != reflect.Struct && k != reflect.Pointer {
			return nil
		}
		for i := 0; i < v.Len(); i++ {
			if err := c.check(v.Index(i).Addr().Interface()); err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
		}
	}
	return nil
}

func emptyBody(status int, data []byte) bool {
	return status == http.StatusNoContent || len(bytes.TrimSpace(data)) == 0
}
