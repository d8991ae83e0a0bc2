package signature

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	cerrors "github.com/communitybridge/cinco-client/internal/errors"
)

const (
	// Version is the only signature version this package produces.
	Version = "1"

	// AuthScheme prefixes the Authorization header value.
	AuthScheme = "CINCO"

	// TimeFormat is the timestamp layout carried in the Date header.
	TimeFormat = "2006-01-02T15:04:05.000Z"
)

// Header names set by Sign.
const (
	DateKey             = "Date"
	SignatureVersionKey = "Signature-Version"
	ContentMD5Key       = "Content-MD5"
	AuthorizationKey    = "Authorization"
)

// Key is the shared-secret credential of one principal. It is immutable and
// safe to share across goroutines.
type Key struct {
	KeyID  string `json:"keyId"`
	Secret string `json:"secret"`
}

// Validate rejects a key that cannot sign.
func (k Key) Validate() error {
	if k.KeyID == "" {
		return cerrors.InvalidArgument("signing key: empty key id")
	}
	if k.Secret == "" {
		return cerrors.InvalidArgument("signing key %s: empty secret", k.KeyID)
	}
	return nil
}

// String hides the secret.
func (k Key) String() string { return "Key{" + k.KeyID + "}" }

// Headers are the values computed for one request. They are produced once
// and never reused: each call to Sign takes a fresh timestamp.
type Headers struct {
	Date             string
	SignatureVersion string
	ContentMD5       string
	Authorization    string
}

// Apply sets the signature headers on h.
func (s Headers) Apply(h http.Header) {
	h.Set(DateKey, s.Date)
	h.Set(SignatureVersionKey, s.SignatureVersion)
	h.Set(ContentMD5Key, s.ContentMD5)
	h.Set(AuthorizationKey, s.Authorization)
}

// Signer signs requests. The zero value uses the wall clock.
type Signer struct {
	// Now returns the signing time. Tests inject a fixed clock.
	Now func() time.Time
}

// Sign computes the signature headers for method, uriPath and body using key.
// uriPath is the escaped path (and query, if any) exactly as sent on the wire.
func (s Signer) Sign(key Key, method, uriPath string, body []byte) (Headers, error) {
	if err := key.Validate(); err != nil {
		return Headers{}, err
	}
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		return Headers{}, cerrors.InvalidArgument("sign: empty method")
	}
	if !strings.HasPrefix(uriPath, "/") {
		return Headers{}, cerrors.InvalidArgument("sign: uri path %q must start with /", uriPath)
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	ts := FormatTime(now())
	digest := BodyDigest(body)
	sig := compute(key.Secret, CanonicalString(method, uriPath, ts, digest))

	return Headers{
		Date:             ts,
		SignatureVersion: Version,
		ContentMD5:       digest,
		Authorization:    FormatAuthorization(key.KeyID, sig),
	}, nil
}

// CanonicalString joins the signed fields in wire order.
func CanonicalString(method, uriPath, timestamp, bodyDigest string) string {
	return strings.Join([]string{method, uriPath, timestamp, bodyDigest, Version}, "\n")
}

// BodyDigest returns the hex MD5 of body; nil digests as the empty string.
func BodyDigest(body []byte) string {
	sum := md5.Sum(body)
	return hex.EncodeToString(sum[:])
}

// FormatTime renders t in the Date header layout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}

// FormatAuthorization renders the Authorization header value.
func FormatAuthorization(keyID, signature string) string {
	return AuthScheme + " " + keyID + ": " + signature
}

func compute(secret, canonical string) string {
	mac := hmac.New(sha1.New, []byte(secret))
	_, _ = mac.Write([]byte(canonical))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
