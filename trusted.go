package client

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	cerrors "github.com/communitybridge/cinco-client/internal/errors"
	"github.com/communitybridge/cinco-client/internal/types"
)

// FetchTrustedKey obtains the signing key of lfID from the trusted credential
// endpoint, authenticating with cfg's integration credential. A 404 means the
// principal is unknown.
func FetchTrustedKey(ctx context.Context, cfg Config, lfID string) (Key, error) {
	if err := cfg.ResolveDefaults(); err != nil {
		return Key{}, err
	}
	if !cfg.HasTrustedCredentials() {
		return Key{}, cerrors.InvalidArgument("trusted user and password are required")
	}
	if err := types.ValidateID("principal", lfID); err != nil {
		return Key{}, err
	}

	rc := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.APIURL, "/")).
		SetBasicAuth(cfg.TrustedUser, cfg.TrustedPassword).
		SetHeader("Accept", "application/json").
		SetTimeout(cfg.HTTPTimeout)

	op := "fetch trusted key " + lfID
	resp, err := rc.R().
		SetContext(ctx).
		SetPathParam("lfId", lfID).
		Get("/auth/trusted/cas/{lfId}")
	if err != nil {
		if ctx.Err() != nil {
			return Key{}, ctx.Err()
		}
		return Key{}, cerrors.Transport(op, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return Key{}, cerrors.FromResponse(resp.StatusCode(), resp.Body(), op)
	}

	var tk types.TrustedKey
	if err := json.Unmarshal(resp.Body(), &tk); err != nil {
		return Key{}, &cerrors.Error{Kind: cerrors.KindHTTP, StatusCode: resp.StatusCode(), Message: op + ": decode response", Cause: err}
	}
	key := Key{KeyID: tk.KeyID, Secret: tk.Secret}
	if err := key.Validate(); err != nil {
		return Key{}, &cerrors.Error{Kind: cerrors.KindHTTP, StatusCode: resp.StatusCode(), Message: op + ": incomplete key", Cause: err}
	}
	return key, nil
}
