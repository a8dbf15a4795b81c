package upload

import (
	"bytes"
	"io"
)

// RequestParams holds the values a Request is built from
type RequestParams struct {
	Payload      []byte
	Filename     string
	Kind         Kind
	ExplicitName bool   // Filename was given by the user and must be kept verbatim
	Expires      string // optional expiration hint such as "24h"
	Provider     string // forced provider, empty when not forced
	Group        string // forced group, empty when not forced
}

// Request is one immutable upload request. The payload is owned by the
// request for its lifetime and must not be modified by adapters.
type Request struct {
	params RequestParams
	wrap   func(io.Reader) io.Reader
}

// NewRequest creates a request from params
func NewRequest(params RequestParams) *Request {
	return &Request{params: params}
}

// Size returns the payload size in bytes
func (r *Request) Size() int64 { return int64(len(r.params.Payload)) }

// Filename returns the effective filename
func (r *Request) Filename() string { return r.params.Filename }

// Kind returns the content kind
func (r *Request) Kind() Kind { return r.params.Kind }

// ExplicitName reports whether the filename was chosen by the user
func (r *Request) ExplicitName() bool { return r.params.ExplicitName }

// Expires returns the expiration hint
func (r *Request) Expires() string { return r.params.Expires }

// Provider returns the forced provider name
func (r *Request) Provider() string { return r.params.Provider }

// Group returns the forced group name
func (r *Request) Group() string { return r.params.Group }

// Payload returns the payload bytes. Callers must treat them as read-only.
func (r *Request) Payload() []byte { return r.params.Payload }

// Body returns a fresh reader over the payload for one attempt
func (r *Request) Body() io.Reader {
	var body io.Reader = bytes.NewReader(r.params.Payload)
	if r.wrap != nil {
		body = r.wrap(body)
	}
	return body
}

// WithBodyWrapper returns a copy of the request whose Body is passed
// through wrap, used for progress reporting. The receiver is unchanged.
func (r *Request) WithBodyWrapper(wrap func(io.Reader) io.Reader) *Request {
	return &Request{params: r.params, wrap: wrap}
}
