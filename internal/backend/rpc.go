package backend

import (
	"context"
	"encoding/json"
	"net/http"
)

// CallOption adjusts a single procedure call.
type CallOption func(*request)

// WithIdempotencyKey tags a call so retries of the same intent can be recognised.
func WithIdempotencyKey(key string) CallOption {
	return func(r *request) {
		if r.headers == nil {
			r.headers = make(map[string]string)
		}
		r.headers["Idempotency-Key"] = key
	}
}

// RPC invokes the stored procedure name with named params. A 204 or empty
// body is success and leaves out untouched; it reports whether a body was
// decoded.
func (c *Client) RPC(ctx context.Context, token, name string, params any, out any, opts ...CallOption) (bool, error) {
	raw, err := c.rpcRaw(ctx, token, name, params, opts...)
	if err != nil || raw == nil {
		return false, err
	}
	if err := c.decode(name, raw, out); err != nil {
		return false, err
	}
	return true, nil
}

// Result is the envelope returned by procedures that can refuse a request.
type Result struct {
	Success *bool  `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// CallResult invokes name and turns a {success: false} answer into an
// *RPCError carrying the server's message. The full body is then decoded
// into out when out is not nil.
func (c *Client) CallResult(ctx context.Context, token, name string, params any, out any, opts ...CallOption) error {
	raw, err := c.rpcRaw(ctx, token, name, params, opts...)
	if err != nil || raw == nil {
		return err
	}
	var res Result
	if err := json.Unmarshal(raw, &res); err == nil && res.Success != nil && !*res.Success {
		return &RPCError{Procedure: name, Message: firstNonEmpty(res.Error, res.Message)}
	}
	return c.decode(name, raw, out)
}

func (c *Client) rpcRaw(ctx context.Context, token, name string, params any, opts ...CallOption) (json.RawMessage, error) {
	if params == nil {
		params = struct{}{}
	}
	req := request{
		method: http.MethodPost,
		path:   "/rest/v1/rpc/" + name,
		token:  token,
		body:   params,
	}
	for _, opt := range opts {
		opt(&req)
	}
	status, data, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	if emptyBody(status, data) {
		return nil, nil
	}
	return json.RawMessage(data), nil
}
