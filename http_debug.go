package client

import (
	"net/http"
	"net/http/httputil"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// debugTransport provides detailed HTTP request/response logging for debugging client issues.
//
// Purpose:
//   - Troubleshoot signature rejections by inspecting the signed headers
//   - Follow the polls issued for an accepted job
//
// When to use:
//   - Set CINCO_DEBUG=true or DEBUG=true environment variable
//   - Or pass WithDebugLogging(true)
//
// Security considerations:
//   - Logs full request/response bodies including signatures and user data
//   - Only enable in development/staging environments
//
// Example usage:
//
//	export CINCO_DEBUG=true
//	go run main.go  # Client will now log all HTTP traffic
type debugTransport struct {
	base http.RoundTripper
	log  zerolog.Logger
}

// newDebugTransport wraps base. A disabled logger falls back to the global
// zerolog logger so dumps are not silently dropped.
func newDebugTransport(base http.RoundTripper, l zerolog.Logger) *debugTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	if l.GetLevel() == zerolog.Disabled {
		l = log.Logger
	}
	return &debugTransport{base: base, log: l}
}

func (dt *debugTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if reqDump, err := httputil.DumpRequestOut(req, true); err == nil {
		dt.log.Debug().Str("method", req.Method).Str("url", req.URL.String()).Str("request_dump", string(reqDump)).Msg("HTTP request")
	}

	resp, err := dt.base.RoundTrip(req)
	if err != nil {
		dt.log.Error().Err(err).Str("method", req.Method).Str("url", req.URL.String()).Msg("HTTP request failed")
		return nil, err
	}

	if respDump, err := httputil.DumpResponse(resp, true); err == nil {
		dt.log.Debug().Str("method", req.Method).Str("url", req.URL.String()).Int("status_code", resp.StatusCode).Str("response_dump", string(respDump)).Msg("HTTP response")
	}
	return resp, nil
}

// debugLoggingRequested reports whether CINCO_DEBUG=true or DEBUG=true is set.
func debugLoggingRequested() bool {
	return os.Getenv("CINCO_DEBUG") == "true" || os.Getenv("DEBUG") == "true"
}
