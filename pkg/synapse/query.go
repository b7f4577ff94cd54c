package synapse

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/gorilla/schema"
)

// DefaultQuerySeparator joins sequence-typed query parameters that are not
// declared as arrayQuery and carry no explicit separator.
const DefaultQuerySeparator = ";"

// QueryEncoder is the explicit contract for expanding an object into query
// entries. Each call to add produces one entry.
type QueryEncoder interface {
	EncodeQuery(add func(key, value string))
}

var queryEncoder = func() *schema.Encoder {
	enc := schema.NewEncoder()
	enc.SetAliasTag("query")
	enc.RegisterEncoder(time.Time{}, encodeReflected)
	enc.RegisterEncoder(&time.Time{}, encodeReflected)
	return enc
}()

func encodeReflected(v reflect.Value) string {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}
	if !v.CanInterface() {
		return ""
	}
	s, _ := FormatValue(v.Interface(), "")
	return s
}

// objectFields splits the top-level fields of a struct by query key. Skipped
// holds unexported fields and nil pointers, maps, slices and interfaces;
// their keys and encoder errors are dropped unless a kept field shares them.
type objectFields struct {
	skippedKeys, keptKeys   map[string]bool
	skippedTypes, keptTypes map[string]bool
}

func inspectObject(v any) objectFields {
	f := objectFields{
		skippedKeys:  map[string]bool{},
		keptKeys:     map[string]bool{},
		skippedTypes: map[string]bool{},
		keptTypes:    map[string]bool{},
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return f
	}

	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		key := field.Name
		if name, _, _ := strings.Cut(field.Tag.Get("query"), ","); name != "" {
			key = name
		}
		if key == "-" {
			continue
		}
		typ := field.Type.String()
		if !field.IsExported() || isNilField(rv.Field(i)) {
			f.skippedKeys[key] = true
			f.skippedTypes[typ] = true
			continue
		}
		f.keptKeys[key] = true
		f.keptTypes[typ] = true
	}
	return f
}

func isNilField(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return v.IsNil()
	}
	return false
}

// filter removes skipped keys from dst and the encoder errors they caused
func (f objectFields) filter(dst map[string][]string, err error) error {
	for key := range f.skippedKeys {
		if !f.keptKeys[key] {
			delete(dst, key)
		}
	}

	var multi schema.MultiError
	if err == nil || !stderrors.As(err, &multi) {
		return err
	}
	remaining := schema.MultiError{}
	for key, e := range multi {
		if f.skippedTypes[key] && !f.keptTypes[key] {
			continue
		}
		remaining[key] = e
	}
	if len(remaining) == 0 {
		return nil
	}
	return remaining
}

// QueryValue adds a scalar query entry. Nil values and empty strings are omitted.
func QueryValue(r *Request, key string, v any, spec string) {
	s, ok := FormatValue(v, spec)
	if !ok || s == "" {
		return
	}
	r.Query.Add(key, s)
}

// QuerySeq adds a sequence query parameter. With an empty separator every
// element becomes its own entry under key; otherwise the elements are joined
// into a single entry. Nil and empty elements are skipped.
func QuerySeq[T any](r *Request, key string, values []T, sep, spec string) {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		s, ok := FormatValue(v, spec)
		if !ok || s == "" {
			continue
		}
		parts = append(parts, s)
	}
	if len(parts) == 0 {
		return
	}
	if sep == "" {
		for _, p := range parts {
			r.Query.Add(key, p)
		}
		return
	}
	r.Query.Add(key, strings.Join(parts, sep))
}

// QueryObject expands v into one entry per exported field. Values
// implementing QueryEncoder expand themselves; plain structs are encoded
// with their `query` struct tags. Nil and empty values are omitted and
// time.Time fields use RFC 3339. Encoding errors are recorded on the
// request and surface from Invoke.
func QueryObject(r *Request, v any) {
	if v == nil {
		return
	}
	add := func(key, value string) {
		if key != "" && value != "" {
			r.Query.Add(key, value)
		}
	}
	if enc, ok := v.(QueryEncoder); ok {
		enc.EncodeQuery(add)
		return
	}
	if _, ok := FormatValue(v, ""); !ok {
		return
	}

	fields := inspectObject(v)
	dst := map[string][]string{}
	err := queryEncoder.Encode(v, dst)
	if err = fields.filter(dst, err); err != nil {
		r.fail(err)
		return
	}
	for key, values := range dst {
		for _, value := range values {
			add(key, value)
		}
	}
}

// QueryMap adds one entry per map element, in key order. Nil and empty
// values are omitted.
func QueryMap[K comparable, V any](r *Request, m map[K]V, spec string) {
	keys := make([]string, 0, len(m))
	values := make(map[string]V, len(m))
	for k, v := range m {
		key := fmt.Sprint(k)
		keys = append(keys, key)
		values[key] = v
	}
	sort.Strings(keys)
	for _, key := range keys {
		QueryValue(r, key, values[key], spec)
	}
}

// HeaderValue sets a header when the formatted value is non-empty
func HeaderValue(r *Request, key string, v any, spec string) {
	s, ok := FormatValue(v, spec)
	if !ok || s == "" {
		return
	}
	r.Header.Add(key, s)
}
