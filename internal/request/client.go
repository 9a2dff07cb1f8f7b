package request

import (
	"encoding/json"
	"io"
	"net/http"
)

// Client sends page requests with the factory's shared configuration.
type Client struct {
	factory *Factory
	http    *http.Client
}

// NewClient returns a client for f. With credentials "include" the jar is
// attached, so cookies go out with every call and Set-Cookie responses are
// stored. hc may be nil; it is copied, never mutated.
func NewClient(f *Factory, jar http.CookieJar, hc *http.Client) *Client {
	c := &http.Client{}
	if hc != nil {
		*c = *hc
	}
	if f.Config().Credentials == CredentialsInclude && jar != nil {
		c.Jar = jar
	}
	return &Client{factory: f, http: c}
}

func (c *Client) Factory() *Factory { return c.factory }

// Send performs req. Non-2xx responses are drained, closed and reported as
// *StatusError; transport failures as *NetworkError.
func (c *Client) Send(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{Method: req.Method, URL: req.URL.String(), Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, &StatusError{Method: req.Method, URL: req.URL.String(), Code: resp.StatusCode}
	}
	return resp, nil
}

// Discard sends req and throws the body away.
func (c *Client) Discard(req *http.Request) (int, error) {
	resp, err := c.Send(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

// DecodeJSON decodes the whole body of resp into target and closes it.
// Trailing data after the first value is a *ParseError.
func DecodeJSON(resp *http.Response, target any) error {
	defer resp.Body.Close()
	method, where := "", ""
	if resp.Request != nil {
		method, where = resp.Request.Method, resp.Request.URL.String()
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Method: method, URL: where, Err: err}
	}
	if err := json.Unmarshal(body, target); err != nil {
		return &ParseError{URL: where, Err: err}
	}
	return nil
}
