// Package stub serves canned responses for registered synapse operations on
// echo, gin or fiber, so generated clients can be exercised against a real
// router in tests.
package stub

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/toyz/synapse/pkg/synapse"
)

// Response is what a stubbed operation answers with. Raw takes precedence
// over Body; Body is encoded as JSON.
type Response struct {
	Status int
	Header http.Header
	Body   any
	Raw    []byte
}

// Handler answers one stubbed operation. params holds the values of the
// template placeholders.
type Handler func(r *http.Request, params map[string]string) Response

// Server is a router that can mount stubbed operations
type Server interface {
	http.Handler
	Handle(op synapse.OperationInfo, h Handler) error
	Name() string
}

// Mount registers a handler for every operation. Operations without a
// handler are an error so missing stubs are caught early.
func Mount(s Server, ops []synapse.OperationInfo, handlers map[string]Handler) error {
	for _, op := range ops {
		h, ok := handlers[op.Name]
		if !ok {
			return fmt.Errorf("stub: no handler for operation %s", op.Name)
		}
		if err := s.Handle(op, h); err != nil {
			return err
		}
	}
	return nil
}

// JSON is a Handler answering status with body encoded as JSON
func JSON(status int, body any) Handler {
	return func(*http.Request, map[string]string) Response {
		return Response{Status: status, Body: body}
	}
}

// Status is a Handler answering status with a plain text body
func Status(status int, text string) Handler {
	return func(*http.Request, map[string]string) Response {
		return Response{
			Status: status,
			Header: http.Header{"Content-Type": []string{"text/plain; charset=utf-8"}},
			Raw:    []byte(text),
		}
	}
}

// RoutePath converts a synapse URL template to the :name route syntax
// shared by echo, gin and fiber.
func RoutePath(template string) (string, error) {
	t, err := synapse.ParseTemplate(template)
	if err != nil {
		return "", err
	}
	route := t.Route(func(name string) string { return ":" + name })
	if synapse.IsAbsoluteURL(route) {
		u, err := url.Parse(route)
		if err != nil {
			return "", err
		}
		route = u.Path
	}
	route, _, _ = strings.Cut(route, "?")
	if !strings.HasPrefix(route, "/") {
		route = "/" + route
	}
	return route, nil
}

// encode renders a Response to status, headers and body bytes
func encode(resp Response) (int, http.Header, []byte, error) {
	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	header := resp.Header.Clone()
	if header == nil {
		header = http.Header{}
	}

	if resp.Raw != nil {
		if header.Get("Content-Type") == "" {
			header.Set("Content-Type", "application/octet-stream")
		}
		return status, header, resp.Raw, nil
	}
	if resp.Body == nil {
		return status, header, nil, nil
	}
	data, err := json.Marshal(resp.Body)
	if err != nil {
		return 0, nil, nil, err
	}
	if header.Get("Content-Type") == "" {
		header.Set("Content-Type", "application/json")
	}
	return status, header, data, nil
}

// write sends a Response through a standard ResponseWriter
func write(w http.ResponseWriter, resp Response) {
	status, header, body, err := encode(resp)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	for k, vs := range header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(status)
	if body != nil {
		w.Write(body)
	}
}
