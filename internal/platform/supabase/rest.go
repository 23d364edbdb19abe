package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/supabase-community/postgrest-go"
)

const restSchema = "public"

// Rows returns a PostgREST client for one request chain, authorized with the
// current session's access token:
//
//	q := c.Rows(ctx).From("profiles").Select("*", "", false).Eq("id", id).Limit(1, "")
//	err := c.Execute(ctx, q, &rows)
//
// Without a session the anon key is sent and row-level security decides.
func (c *Client) Rows(ctx context.Context) *postgrest.Client {
	bearer := c.anonKey
	if s, err := c.Auth.Session(ctx); err == nil {
		bearer = s.AccessToken
	}
	rows := postgrest.NewClient(c.baseURL+restPath, restSchema, map[string]string{"apikey": c.anonKey})
	return rows.SetAuthToken(bearer)
}

// Execute runs q and decodes the response body into out. postgrest-go does not
// take a context, so the request runs in its own goroutine and is abandoned
// when ctx ends or the configured HTTP timeout passes.
func (c *Client) Execute(ctx context.Context, q *postgrest.FilterBuilder, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.http.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.http.Timeout)
		defer cancel()
	}

	type result struct {
		body []byte
		err  error
	}
	done := make(chan result, 1)
	go func() {
		body, _, err := q.Execute()
		done <- result{body: body, err: err}
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case r := <-done:
		if r.err != nil {
			return rowError(r.err)
		}
		if out == nil || len(r.body) == 0 {
			return nil
		}
		if err := json.Unmarshal(r.body, out); err != nil {
			return fmt.Errorf("decode rows: %w", err)
		}
		return nil
	}
}

// postgrest-go reports a PostgREST error body as "(<code>) <message>".
var rowErrorPattern = regexp.MustCompile(`^\(([^)]*)\) (.*)$`)

func rowError(err error) error {
	m := rowErrorPattern.FindStringSubmatch(err.Error())
	if m == nil {
		return err
	}
	return &APIError{Code: m[1], Message: m[2]}
}
