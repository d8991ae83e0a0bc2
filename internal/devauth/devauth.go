// Package devauth provides development mode credentials shared by the fake
// backend and the CLI for local testing.
package devauth

import "github.com/communitybridge/cinco-client/internal/signature"

// These values are intentionally obvious and must never be used in production.
const (
	KeyID           = "LOCAL_DEV_KEY"
	Secret          = "LOCAL_DEV_MODE_NOT_FOR_PRODUCTION"
	TrustedUser     = "local-dev"
	TrustedPassword = "LOCAL_DEV_MODE_NOT_FOR_PRODUCTION"
)

// Key is the development signing key.
func Key() signature.Key {
	return signature.Key{KeyID: KeyID, Secret: Secret}
}
