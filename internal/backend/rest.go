package backend

import (
	"context"
	"net/http"
	"net/url"
)

// Eq builds a PostgREST equality filter value.
func Eq(v string) string {
	return "eq." + v
}

// Select reads rows of table matching query into out (usually a slice pointer).
func (c *Client) Select(ctx context.Context, token, table string, query url.Values, out any) error {
	_, data, err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/rest/v1/" + table,
		query:  query,
		token:  token,
	})
	if err != nil {
		return err
	}
	return c.decode(table, data, out)
}

// Update patches the rows of table matching query and decodes the changed
// rows into out when it is not nil.
func (c *Client) Update(ctx context.Context, token, table string, query url.Values, patch any, out any) error {
	status, data, err := c.do(ctx, request{
		method:  http.MethodPatch,
		path:    "/rest/v1/" + table,
		query:   query,
		token:   token,
		body:    patch,
		headers: map[string]string{"Prefer": "return=representation"},
	})
	if err != nil {
		return err
	}
	if emptyBody(status, data) {
		return nil
	}
	return c.decode(table, data, out)
}

// Delete removes the rows of table matching query.
func (c *Client) Delete(ctx context.Context, token, table string, query url.Values) error {
	_, _, err := c.do(ctx, request{
		method: http.MethodDelete,
		path:   "/rest/v1/" + table,
		query:  query,
		token:  token,
	})
	return err
}
