package synapse

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// DefaultBufferSize is the copy buffer used when streaming a response to disk
const DefaultBufferSize = 81920

// ResponseKind names how a response body is turned into a result
type ResponseKind string

const (
	ResponseNone  ResponseKind = "none"
	ResponseFile  ResponseKind = "file"
	ResponseBytes ResponseKind = "bytes"
	ResponseJSON  ResponseKind = "json"
)

// Mapper converts a successful response into the caller-facing result
type Mapper[T any] interface {
	Kind() ResponseKind
	Map(ctx context.Context, resp *http.Response) (T, error)
}

type mapperFunc[T any] struct {
	kind ResponseKind
	fn   func(ctx context.Context, resp *http.Response) (T, error)
}

func (m mapperFunc[T]) Kind() ResponseKind { return m.kind }

func (m mapperFunc[T]) Map(ctx context.Context, resp *http.Response) (T, error) {
	return m.fn(ctx, resp)
}

// JSON decodes the body into T. An empty body yields the zero value.
func JSON[T any]() Mapper[T] {
	return mapperFunc[T]{kind: ResponseJSON, fn: func(ctx context.Context, resp *http.Response) (T, error) {
		var out T
		data, err := readAll(ctx, resp.Body)
		if err != nil {
			return out, err
		}
		if len(bytes.TrimSpace(data)) == 0 {
			return out, nil
		}
		if err := json.Unmarshal(data, &out); err != nil {
			return out, err
		}
		return out, nil
	}}
}

// Bytes returns the raw body
func Bytes() Mapper[[]byte] {
	return mapperFunc[[]byte]{kind: ResponseBytes, fn: func(ctx context.Context, resp *http.Response) ([]byte, error) {
		return readAll(ctx, resp.Body)
	}}
}

// None drains the body for methods without a result
func None() Mapper[struct{}] {
	return mapperFunc[struct{}]{kind: ResponseNone, fn: func(ctx context.Context, resp *http.Response) (struct{}, error) {
		_, err := copyContext(ctx, io.Discard, resp.Body, make([]byte, 4096))
		return struct{}{}, err
	}}
}

// File streams the body to path and returns the zero value of T. The body
// is never decoded. A partial file is removed when the copy fails.
func File[T any](path string, bufferSize int) Mapper[T] {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return mapperFunc[T]{kind: ResponseFile, fn: func(ctx context.Context, resp *http.Response) (T, error) {
		var zero T
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return zero, err
			}
		}
		f, err := os.Create(path)
		if err != nil {
			return zero, err
		}
		_, err = copyContext(ctx, f, resp.Body, make([]byte, bufferSize))
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(path)
			return zero, err
		}
		return zero, nil
	}}
}

func readAll(ctx context.Context, r io.Reader) ([]byte, error) {
	var buf bytes.Buffer
	_, err := copyContext(ctx, &buf, r, make([]byte, 32*1024))
	return buf.Bytes(), err
}

// copyContext is io.CopyBuffer with a cancellation check between chunks
func copyContext(ctx context.Context, dst io.Writer, src io.Reader, buf []byte) (int64, error) {
	var written int64
	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		n, rerr := src.Read(buf)
		if n > 0 {
			w, werr := dst.Write(buf[:n])
			written += int64(w)
			if werr != nil {
				return written, werr
			}
			if w != n {
				return written, io.ErrShortWrite
			}
		}
		if rerr == io.EOF {
			return written, nil
		}
		if rerr != nil {
			return written, rerr
		}
	}
}
