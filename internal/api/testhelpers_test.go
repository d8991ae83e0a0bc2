package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/communitybridge/cinco-client/internal/request"
)

// stubDoer records the descriptors it sees and answers with a canned response.
type stubDoer struct {
	status int
	body   []byte
	err    error
	seen   []request.Descriptor
}

func (s *stubDoer) Do(ctx context.Context, d request.Descriptor) (*request.Response, error) {
	s.seen = append(s.seen, d)
	if s.err != nil {
		return nil, s.err
	}
	return &request.Response{StatusCode: s.status, Header: http.Header{}, Body: s.body}, nil
}

func (s *stubDoer) last() request.Descriptor { return s.seen[len(s.seen)-1] }

func reply(status int, v any) *stubDoer {
	var b []byte
	switch x := v.(type) {
	case nil:
	case string:
		b = []byte(x)
	default:
		b, _ = json.Marshal(x)
	}
	return &stubDoer{status: status, body: b}
}

var errBoom = errors.New("boom")
