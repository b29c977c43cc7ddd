// Package lmsapi is the REST client of the LMS API.
package lmsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo/core"
)

var (
	// errors
	ErrAlreadyEnrolled = errors.New("already enrolled in this course")

	retryWaitTime    = 200 * time.Millisecond // mockable
	retryMaxWaitTime = 2 * time.Second
)

// APIError is a non-2xx answer of the API.
type APIError struct {
	Status  int
	Message string
	Fields  map[string]string // validation errors
}

func (err *APIError) Error() string {
	msg := err.Message
	if msg == "" {
		msg = http.StatusText(err.Status)
	}
	return fmt.Sprintf("lms api: %d %s", err.Status, msg)
}

// HasStatus reports whether err is an *APIError with status code.
func HasStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == code
}

// TokenSource supplies the bearer token of each request; an empty token sends none.
type TokenSource interface {
	Token() (string, error)
}

// StaticToken is a fixed TokenSource.
type StaticToken string

func (t StaticToken) Token() (string, error) { return string(t), nil }

type Client struct {
	http   *resty.Client
	tokens TokenSource
}

// envelope is the body of every API response.
type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// New returns a Client of the API at conf.BaseURL. tokens may be nil.
// Transport errors and 5xx answers of idempotent requests are retried conf.Retries times.
func New(conf core.APIConfig, tokens TokenSource) *Client {
	c := &Client{tokens: tokens}
	c.http = resty.New().
		SetBaseURL(conf.BaseURL).
		SetTimeout(conf.Timeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(conf.Retries).
		SetRetryWaitTime(retryWaitTime).
		SetRetryMaxWaitTime(retryMaxWaitTime).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			if resp == nil || !idempotent(resp.Request) {
				return false
			}
			return err != nil || resp.StatusCode() >= http.StatusInternalServerError
		}).
		OnBeforeRequest(c.authorize)
	return c
}

// idempotent reports whether req can be sent again safely: reads, and the progress
// endpoints, which only ever add completions.
func idempotent(req *resty.Request) bool {
	if req == nil {
		return false
	}
	switch req.Method {
	case http.MethodGet, http.MethodHead:
		return true
	case http.MethodPost:
		return strings.Contains(req.URL, "/progress/")
	default:
		return false
	}
}

func (c *Client) authorize(_ *resty.Client, req *resty.Request) error {
	if c.tokens == nil {
		return nil
	}
	token, err := c.tokens.Token()
	if err != nil {
		return errors.Wrap(err, "getting token")
	}
	if token != "" {
		req.SetAuthToken(token)
	}
	return nil
}

// call is one API request.
type call struct {
	method     string
	path       string
	pathParams map[string]string
	query      map[string]string
	body       interface{}
	out        interface{} // decoded from the answer data when not nil
}

func (c *Client) do(ctx context.Context, cl call) error {
	var env envelope
	req := c.http.R().
		SetContext(ctx).
		SetPathParams(cl.pathParams).
		SetQueryParams(cl.query).
		SetResult(&env).
		SetError(&env)
	if cl.body != nil {
		req.SetBody(cl.body)
	}

	resp, err := req.Execute(cl.method, cl.path)
	if err != nil {
		return errors.Wrapf(err, "%s %s", cl.method, cl.path)
	}
	if resp.IsError() {
		apiErr := &APIError{Status: resp.StatusCode(), Message: env.Message}
		if len(env.Data) > 0 {
			_ = json.Unmarshal(env.Data, &apiErr.Fields)
		}
		return apiErr
	}
	if cl.out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, cl.out); err != nil {
			return errors.Wrapf(err, "decoding %s %s", cl.method, cl.path)
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, pathParams map[string]string, out interface{}) error {
	return c.do(ctx, call{method: http.MethodGet, path: path, pathParams: pathParams, out: out})
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, call{method: http.MethodPost, path: path, body: body, out: out})
}

func (c *Client) delete(ctx context.Context, path, id string) error {
	return c.do(ctx, call{method: http.MethodDelete, path: path, pathParams: map[string]string{"id": id}})
}
