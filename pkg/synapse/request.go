package synapse

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
)

const (
	// DefaultContentType is used for bodies when no content type is configured
	DefaultContentType = "application/json"

	// DefaultTextContentType is used for raw string bodies
	DefaultTextContentType = "text/plain; charset=utf-8"
)

// Request is the built request spec for one invocation. Generated methods
// populate it and hand it to Invoke; it is never shared between invocations.
type Request struct {
	Operation string
	Method    string
	Path      string
	Query     url.Values
	Header    http.Header

	body    *requestBody
	scope   Scope
	acquire TokenFunc
	errs    []error
}

type requestBody struct {
	value       any
	raw         bool
	contentType string
}

// NewRequest starts a request for the named operation
func NewRequest(operation, method, path string) *Request {
	return &Request{
		Operation: operation,
		Method:    method,
		Path:      path,
		Query:     url.Values{},
		Header:    http.Header{},
	}
}

// JSON sets v as the request body, serialized as JSON when the request is built
func (r *Request) JSON(v any, contentType string) *Request {
	r.body = &requestBody{value: v, contentType: contentType}
	return r
}

// Text sets the string form of v as the request body, sent verbatim
func (r *Request) Text(v any, contentType string) *Request {
	r.body = &requestBody{value: v, raw: true, contentType: contentType}
	return r
}

// Authorize marks the request as needing a token for the given scope
func (r *Request) Authorize(scope Scope, fetch TokenFunc) *Request {
	r.scope = scope
	r.acquire = fetch
	return r
}

// HasBody reports whether a body was set
func (r *Request) HasBody() bool {
	return r.body != nil
}

// Scope returns the token scope set by Authorize
func (r *Request) Scope() Scope {
	return r.scope
}

// Err returns the binding errors recorded while the request was populated
func (r *Request) Err() error {
	return errors.Join(r.errs...)
}

func (r *Request) fail(err error) {
	if err != nil {
		r.errs = append(r.errs, err)
	}
}

// encodeBody serializes the body and resolves its content type against the
// client default.
func (r *Request) encodeBody(fallback string) ([]byte, string, error) {
	if r.body == nil {
		return nil, "", nil
	}

	ct := r.body.contentType
	if r.body.raw {
		if ct == "" {
			ct = DefaultTextContentType
		}
		s, _ := FormatValue(r.body.value, "")
		return []byte(s), ct, nil
	}

	if ct == "" {
		ct = fallback
	}
	if ct == "" {
		ct = DefaultContentType
	}
	data, err := json.Marshal(r.body.value)
	if err != nil {
		return nil, "", err
	}
	return data, ct, nil
}
