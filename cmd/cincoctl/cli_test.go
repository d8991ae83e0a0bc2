package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/communitybridge/cinco-client/internal/devauth"
	"github.com/communitybridge/cinco-client/internal/fakeapi"
	"github.com/communitybridge/cinco-client/internal/signature"
	"github.com/communitybridge/cinco-client/internal/types"
)

func newBackend(t *testing.T) (*fakeapi.Server, string) {
	t.Helper()
	fake := fakeapi.New(fakeapi.Config{
		Keys:            []signature.Key{devauth.Key()},
		TrustedUser:     devauth.TrustedUser,
		TrustedPassword: devauth.TrustedPassword,
		AsyncCreate:     true,
		Log:             zerolog.Nop(),
	})
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return fake, srv.URL
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCLI_RequestCreatesAndGetUserReads(t *testing.T) {
	_, url := newBackend(t)

	out, err := run(t, "--api-url", url, "request", "POST", "users", "--data", `{"lfId":"jdoe","email":"j@example.org"}`)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "HTTP 201\n"), out)

	var u types.User
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(out, "HTTP 201\n")), &u))
	require.NotEmpty(t, u.ID)

	out, err = run(t, "--api-url", url, "get-user", u.ID)
	require.NoError(t, err)
	assert.Contains(t, out, `"lfId": "jdoe"`)
}

func TestCLI_RequestPollsAcceptedJob(t *testing.T) {
	_, url := newBackend(t)

	out, err := run(t, "--api-url", url, "request", "POST", "projects", "--data", `{"name":"Zephyr"}`)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "HTTP 200\n"), out)
	assert.Contains(t, out, `"name": "Zephyr"`)
}

func TestCLI_RequestFailsOnErrorStatus(t *testing.T) {
	_, url := newBackend(t)

	out, err := run(t, "--api-url", url, "request", "GET", "projects/missing")
	require.Error(t, err)
	assert.Contains(t, out, "HTTP 404")

	_, err = run(t, "--api-url", url, "request", "POST", "users", "--data", "{")
	assert.Error(t, err)
}

func TestCLI_GetProjectWrongSecret(t *testing.T) {
	_, url := newBackend(t)
	_, err := run(t, "--api-url", url, "--secret", "wrong", "get-project", "p1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 401")
}

func TestCLI_Sign(t *testing.T) {
	out, err := run(t, "--api-url", "http://localhost:8080/", "sign", "post", "/users", "--data", `{"name":"a"}`)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "POST /users\n"), out)
	assert.Contains(t, out, "Signature-Version: 1\n")
	assert.Contains(t, out, "Content-MD5: 88148e411b9b424a2e0ddf108cb02baa\n")
	assert.Contains(t, out, "Authorization: CINCO "+devauth.KeyID+": ")

	_, err = run(t, "--api-url", "http://localhost:8080/", "sign", "", "users")
	assert.Error(t, err, "method required")
}

// sign resolves PATH against the API root, so its output verifies for the
// same URI that request sends.
func TestCLI_SignResolvesAgainstRoot(t *testing.T) {
	out, err := run(t, "--api-url", "http://h.example.org/api/", "sign", "GET", "users?name=a")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Equal(t, "GET /api/users?name=a", lines[0])
	h := make(http.Header)
	for _, line := range lines[1:] {
		k, v, ok := strings.Cut(line, ": ")
		require.True(t, ok, line)
		h.Set(k, v)
	}
	require.NoError(t, signature.Verify(devauth.Key(), "GET", "/api/users?name=a", h, nil, time.Now(), time.Minute))
}

func TestCLI_ConfigFromEnv(t *testing.T) {
	_, url := newBackend(t)
	t.Setenv("CINCO_POLL_MAX_ATTEMPTS", "0")
	t.Setenv("CINCO_POLL_TIMEOUT", "0s")

	_, err := run(t, "--api-url", url, "get-user", "u1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unbounded")
}

func TestCLI_MockServerUsesServiceLogger(t *testing.T) {
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs([]string{"mock-server", "--addr", "127.0.0.1:0", "--principal", "jdoe"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, root.ExecuteContext(ctx))
	assert.Contains(t, errOut.String(), `"service":"cinco-fakeapi"`)
	assert.Contains(t, errOut.String(), `"lfId":"jdoe"`)
	assert.Contains(t, errOut.String(), "Server exited")
}

func TestCLI_TrustedKey(t *testing.T) {
	fake, url := newBackend(t)
	want := fake.AddPrincipal("jdoe")

	out, err := run(t, "--api-url", url, "trusted-key", "jdoe",
		"--trusted-user", devauth.TrustedUser, "--trusted-password", devauth.TrustedPassword)
	require.NoError(t, err)
	var got map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, want.KeyID, got["keyId"])
	assert.Equal(t, want.Secret, got["secret"])

	_, err = run(t, "--api-url", url, "trusted-key", "jdoe")
	assert.Error(t, err, "credentials required")
}
