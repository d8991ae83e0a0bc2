// Package api implements named resource operations on top of the signed
// request core. Each operation checks the one status it treats as success and
// classifies everything else.
package api

import (
	"context"
	"fmt"
	"net/http"

	cerrors "github.com/communitybridge/cinco-client/internal/errors"
	"github.com/communitybridge/cinco-client/internal/request"
	"github.com/communitybridge/cinco-client/internal/types"
)

// call issues d and returns the response when its status is one of want.
func call(ctx context.Context, do types.Doer, d request.Descriptor, op string, want ...int) (*request.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resp, err := do.Do(ctx, d)
	if err != nil {
		return nil, err
	}
	for _, code := range want {
		if resp.StatusCode == code {
			return resp, nil
		}
	}
	return nil, cerrors.FromResponse(resp.StatusCode, resp.Body, op)
}

// decode unmarshals a success body into v.
func decode[T any](resp *request.Response, op string) (*T, error) {
	var v T
	if err := resp.Decode(&v); err != nil {
		return nil, &cerrors.Error{
			Kind:       cerrors.KindHTTP,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("%s: decode response", op),
			Body:       string(resp.Body),
			Cause:      err,
		}
	}
	return &v, nil
}

func jsonDescriptor(method, path string, v any) (request.Descriptor, error) {
	d, err := request.JSON(method, path, v)
	if err != nil {
		return request.Descriptor{}, cerrors.InvalidArgument("encode %s %s: %v", method, path, err)
	}
	return d, nil
}

func get(path string) request.Descriptor {
	return request.Descriptor{Method: http.MethodGet, Path: path}
}
