package signature

import (
	"crypto/hmac"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Verification failures. They are plain errors: verification runs on the
// serving side, where the classified client taxonomy does not apply.
var (
	ErrMalformedAuthorization = errors.New("malformed authorization header")
	ErrUnsupportedVersion     = errors.New("unsupported signature version")
	ErrDigestMismatch         = errors.New("content-md5 does not match body")
	ErrClockSkew              = errors.New("request timestamp outside allowed skew")
	ErrSignatureMismatch      = errors.New("signature mismatch")
)

// ParseAuthorization splits "CINCO <keyId>: <signature>".
func ParseAuthorization(value string) (keyID, sig string, err error) {
	rest, ok := strings.CutPrefix(value, AuthScheme+" ")
	if !ok {
		return "", "", ErrMalformedAuthorization
	}
	keyID, sig, ok = strings.Cut(rest, ": ")
	if !ok || keyID == "" || sig == "" {
		return "", "", ErrMalformedAuthorization
	}
	return keyID, sig, nil
}

// Verify checks a received request against key. maxSkew bounds the distance
// between now and the Date header; zero disables the check.
func Verify(key Key, method, uriPath string, h http.Header, body []byte, now time.Time, maxSkew time.Duration) error {
	if err := key.Validate(); err != nil {
		return err
	}
	if v := h.Get(SignatureVersionKey); v != Version {
		return fmt.Errorf("%w: %q", ErrUnsupportedVersion, v)
	}
	keyID, sig, err := ParseAuthorization(h.Get(AuthorizationKey))
	if err != nil {
		return err
	}
	if keyID != key.KeyID {
		return fmt.Errorf("%w: key id %q", ErrSignatureMismatch, keyID)
	}

	digest := BodyDigest(body)
	if h.Get(ContentMD5Key) != digest {
		return ErrDigestMismatch
	}

	ts := h.Get(DateKey)
	if maxSkew > 0 {
		at, err := time.Parse(TimeFormat, ts)
		if err != nil {
			return fmt.Errorf("%w: date %q", ErrClockSkew, ts)
		}
		if d := now.Sub(at); d > maxSkew || d < -maxSkew {
			return fmt.Errorf("%w: %s", ErrClockSkew, d)
		}
	}

	want := compute(key.Secret, CanonicalString(strings.ToUpper(method), uriPath, ts, digest))
	if !hmac.Equal([]byte(want), []byte(sig)) {
		return ErrSignatureMismatch
	}
	return nil
}
