package synapse

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// invocation carries the per-call state of one Invoke
type invocation struct {
	id      string
	started time.Time
	log     *zap.Logger
	hooks   hookSet
	event   Event
}

// Invoke runs one request through the pipeline:
//
//	Built -> Dispatched -> (Success | Failed) -> Completed
//
// The token is acquired first. Once the request is built, before observers
// fire; a non-success status fires fail observers and returns a
// *TransportError; a success fires after observers and hands the response
// to m. Every error raised after Built fires error observers and is
// returned unchanged.
func Invoke[T any](ctx context.Context, c *Client, req *Request, m Mapper[T]) (T, error) {
	var zero T
	if ctx == nil {
		ctx = context.Background()
	}
	if c.err != nil {
		return zero, c.err
	}
	if err := req.Err(); err != nil {
		return zero, err
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	inv := c.begin(req)

	token, err := c.acquire(ctx, req, inv)
	if err != nil {
		inv.log.Error("token acquisition failed", zap.String("scope", string(req.scope)), zap.Error(err))
		return zero, err
	}

	httpReq, err := c.build(ctx, req, token)
	if err != nil {
		inv.log.Error("request build failed", zap.Error(err))
		return zero, err
	}
	inv.event.Stage = StageBuilt
	inv.event.Method = httpReq.Method
	inv.event.URL = httpReq.URL.String()
	inv.event.Header = httpReq.Header
	inv.hooks.before(ctx, inv.event)
	defer inv.complete(m.Kind())

	inv.event.Stage = StageDispatched
	resp, err := c.doer.Do(httpReq)
	if err != nil {
		return zero, inv.fail(ctx, err)
	}
	defer resp.Body.Close()

	inv.event.StatusCode = resp.StatusCode
	if !isSuccess(resp.StatusCode) {
		body, _ := readAll(ctx, resp.Body)
		inv.event.Stage = StageFailed
		inv.event.Body = string(body)
		inv.event.Elapsed = time.Since(inv.started)
		inv.hooks.fail(ctx, inv.event)
		return zero, inv.fail(ctx, &TransportError{
			Operation:  req.Operation,
			Method:     httpReq.Method,
			URL:        inv.event.URL,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       inv.event.Body,
		})
	}

	inv.event.Stage = StageSuccess
	inv.event.Elapsed = time.Since(inv.started)
	inv.hooks.after(ctx, inv.event)

	out, err := m.Map(ctx, resp)
	if err != nil {
		return zero, inv.fail(ctx, err)
	}
	return out, nil
}

func (c *Client) begin(req *Request) *invocation {
	id := c.newID()
	started := time.Now()
	return &invocation{
		id:      id,
		started: started,
		log: c.logger.With(
			zap.String("invocation_id", id),
			zap.String("client", c.name),
			zap.String("operation", req.Operation),
		),
		hooks: c.hooks(req.Operation),
		event: Event{
			InvocationID: id,
			Client:       c.name,
			Operation:    req.Operation,
			Method:       req.Method,
			Scope:        req.scope,
			Started:      started,
		},
	}
}

// fail fires the error observers and hands err back unchanged
func (inv *invocation) fail(ctx context.Context, err error) error {
	inv.event.Err = err
	inv.event.Elapsed = time.Since(inv.started)
	inv.hooks.error(ctx, inv.event)
	inv.log.Debug("request error", zap.Error(err))
	return err
}

// complete closes an invocation that got past Built, whatever the outcome
func (inv *invocation) complete(kind ResponseKind) {
	outcome := inv.event.Stage
	inv.event.Stage = StageCompleted
	inv.event.Elapsed = time.Since(inv.started)
	inv.log.Debug("request completed",
		zap.String("stage", string(inv.event.Stage)),
		zap.String("outcome", string(outcome)),
		zap.Int("status", inv.event.StatusCode),
		zap.String("response", string(kind)),
		zap.Bool("failed", inv.event.Err != nil),
		zap.Duration("elapsed", inv.event.Elapsed))
}

// acquire fetches the request's token. An empty token is logged and the
// request proceeds without credentials.
func (c *Client) acquire(ctx context.Context, req *Request, inv *invocation) (string, error) {
	if req.acquire == nil {
		return "", nil
	}
	token, err := req.acquire(ctx)
	if err != nil {
		return "", err
	}
	if token == "" {
		inv.log.Warn("acquired token is empty, sending request without credentials",
			zap.String("scope", string(req.scope)))
	}
	return token, nil
}

func (c *Client) build(ctx context.Context, req *Request, token string) (*http.Request, error) {
	u, err := c.resolve(req.Path, req.Query)
	if err != nil {
		return nil, err
	}

	data, contentType, err := req.encodeBody(c.contentType)
	if err != nil {
		return nil, err
	}
	var body io.Reader
	if data != nil {
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), body)
	if err != nil {
		return nil, err
	}

	for k, vs := range c.header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	for k, vs := range req.Header {
		httpReq.Header.Del(k)
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		value := token
		if c.tokenScheme != "" {
			value = c.tokenScheme + " " + token
		}
		httpReq.Header.Set(c.tokenHeader, value)
	}
	return httpReq, nil
}
