package request

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Descriptor describes one outbound call. It is built fresh per call and not
// mutated once signing begins.
type Descriptor struct {
	Method  string      // defaults to GET
	Path    string      // resolved against the API root, keeping its prefix
	URI     string      // absolute, or relative to the API root host
	Body    []byte      // sent verbatim and digested for Content-MD5
	Headers http.Header // extra headers; signature headers always win
}

// Get is the bare-URI shorthand for a GET descriptor.
func Get(uri string) Descriptor {
	return Descriptor{Method: http.MethodGet, URI: uri}
}

// JSON builds a descriptor whose body is v encoded as JSON.
func JSON(method, path string, v any) (Descriptor, error) {
	d := Descriptor{Method: method, Path: path}
	if v == nil {
		return d, nil
	}
	body, err := json.Marshal(v)
	if err != nil {
		return Descriptor{}, err
	}
	d.Body = body
	return d, nil
}

func (d Descriptor) method() string {
	m := strings.ToUpper(strings.TrimSpace(d.Method))
	if m == "" {
		return http.MethodGet
	}
	return m
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	return json.Unmarshal(r.Body, v)
}
