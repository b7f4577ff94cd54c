package synapse

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Doer sends an HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is the runtime shared by all methods of one generated client.
// It is immutable after New and safe for concurrent use.
type Client struct {
	name            string
	baseURL         *url.URL
	doer            Doer
	timeout         time.Duration
	contentType     string
	header          http.Header
	query           url.Values
	tokenHeader     string
	tokenScheme     string
	observers       []Observer
	methodObservers map[string][]Observer
	logger          *zap.Logger
	newID           func() string
	err             error
}

// Option configures a Client
type Option func(*Client)

// New creates the runtime for the named client. Generated constructors pass
// the interface-level defaults first so caller options override them.
func New(name string, opts ...Option) *Client {
	c := &Client{
		name:            name,
		doer:            http.DefaultClient,
		header:          http.Header{},
		query:           url.Values{},
		tokenHeader:     "Authorization",
		tokenScheme:     "Bearer",
		methodObservers: make(map[string][]Observer),
		logger:          zap.NewNop(),
		newID:           func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the client name used in events and metrics
func (c *Client) Name() string {
	return c.name
}

// BaseURL returns the configured base address, or nil
func (c *Client) BaseURL() *url.URL {
	if c.baseURL == nil {
		return nil
	}
	u := *c.baseURL
	return &u
}

// WithBaseURL sets the address relative templates are resolved against
func WithBaseURL(raw string) Option {
	return func(c *Client) {
		if raw == "" {
			c.baseURL = nil
			return
		}
		u, err := url.Parse(raw)
		if err != nil {
			c.err = fmt.Errorf("synapse: invalid base address %q: %w", raw, err)
			return
		}
		if !u.IsAbs() {
			c.err = fmt.Errorf("synapse: base address %q is not absolute", raw)
			return
		}
		c.baseURL = u
	}
}

// WithHTTPClient replaces the transport. Connection reuse is the Doer's concern.
func WithHTTPClient(d Doer) Option {
	return func(c *Client) {
		if d != nil {
			c.doer = d
		}
	}
}

// WithTimeout bounds every invocation, including token acquisition and body reads
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithContentType sets the default body content type
func WithContentType(ct string) Option {
	return func(c *Client) { c.contentType = ct }
}

// WithHeader adds a default header sent with every request
func WithHeader(key, value string) Option {
	return func(c *Client) { c.header.Set(key, value) }
}

// WithQuery adds a default query entry sent with every request
func WithQuery(key, value string) Option {
	return func(c *Client) { c.query.Set(key, value) }
}

// WithTokenHeader sets the header and scheme used for acquired tokens.
// An empty scheme sends the bare token.
func WithTokenHeader(header, scheme string) Option {
	return func(c *Client) {
		if header != "" {
			c.tokenHeader = header
		}
		c.tokenScheme = scheme
	}
}

// WithObserver adds an interface-level observer
func WithObserver(o Observer) Option {
	return func(c *Client) {
		if o != nil {
			c.observers = append(c.observers, o)
		}
	}
}

// WithMethodObserver adds an observer for one operation. Method-level
// observers run before interface-level ones.
func WithMethodObserver(operation string, o Observer) Option {
	return func(c *Client) {
		if o != nil {
			c.methodObservers[operation] = append(c.methodObservers[operation], o)
		}
	}
}

// WithLogger sets the structured logger
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithIDGenerator replaces the invocation ID source
func WithIDGenerator(fn func() string) Option {
	return func(c *Client) {
		if fn != nil {
			c.newID = fn
		}
	}
}

func (c *Client) hooks(operation string) hookSet {
	method := c.methodObservers[operation]
	if len(method) == 0 {
		return c.observers
	}
	h := make(hookSet, 0, len(method)+len(c.observers))
	h = append(h, method...)
	return append(h, c.observers...)
}

// resolve joins path to the base address unless path is absolute, then
// merges the default and request query values.
func (c *Client) resolve(path string, query url.Values) (*url.URL, error) {
	var raw string
	switch {
	case IsAbsoluteURL(path):
		raw = path
	case c.baseURL != nil:
		base := *c.baseURL
		base.RawQuery = ""
		base.Fragment = ""
		raw = strings.TrimRight(base.String(), "/")
		if p := strings.TrimLeft(path, "/"); p != "" {
			raw += "/" + p
		}
	default:
		return nil, fmt.Errorf("synapse: %s: relative path %q with no base address", c.name, path)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("synapse: %s: invalid request URL %q: %w", c.name, raw, err)
	}

	q := u.Query()
	if c.baseURL != nil && !IsAbsoluteURL(path) {
		for k, vs := range c.baseURL.Query() {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
	}
	for k, vs := range c.query {
		if _, ok := query[k]; !ok {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
	}
	for k, vs := range query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u, nil
}
