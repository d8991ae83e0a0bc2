// Command cincoctl issues signed requests against the CINCO API and serves a
// local fake of it for development.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	client "github.com/communitybridge/cinco-client"
	"github.com/communitybridge/cinco-client/internal/config"
	"github.com/communitybridge/cinco-client/internal/devauth"
	"github.com/communitybridge/cinco-client/internal/fakeapi"
	"github.com/communitybridge/cinco-client/internal/logger"
	"github.com/communitybridge/cinco-client/internal/request"
	"github.com/communitybridge/cinco-client/internal/signature"
)

const callTimeout = 2 * time.Minute

type rootOptions struct {
	apiURL string
	keyID  string
	secret string
	debug  bool
}

func main() {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// NewRootCmd constructs the root CLI command; exposed for unit testing.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:           "cincoctl",
		Short:         "cincoctl issues signed requests against the CINCO API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.Logger = logger.Console(cmd.ErrOrStderr(), opts.debug)
			if opts.debug {
				log.Debug().Msg("debug logging enabled")
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.apiURL, "api-url", getEnv("CINCO_API_URL", "http://localhost:8080/"), "CINCO API root URL")
	rootCmd.PersistentFlags().StringVar(&opts.keyID, "key-id", getEnv("CINCO_KEY_ID", devauth.KeyID), "Signing key id")
	rootCmd.PersistentFlags().StringVar(&opts.secret, "secret", getEnv("CINCO_SECRET", devauth.Secret), "Signing key secret")
	rootCmd.PersistentFlags().BoolVarP(&opts.debug, "debug", "d", false, "Enable verbose debug output")

	// Sub-commands
	rootCmd.AddCommand(newRequestCmd(opts))
	rootCmd.AddCommand(newSignCmd(opts))
	rootCmd.AddCommand(newTrustedKeyCmd(opts))
	rootCmd.AddCommand(newGetUserCmd(opts))
	rootCmd.AddCommand(newGetProjectCmd(opts))
	rootCmd.AddCommand(newMockServerCmd())

	return rootCmd
}

func (o *rootOptions) key() client.Key {
	return client.Key{KeyID: o.keyID, Secret: o.secret}
}

// config loads the CINCO_ environment with the flags applied on top.
func (o *rootOptions) config() (client.Config, error) {
	cfg, err := config.Load(o.apiURL)
	if err != nil {
		return client.Config{}, err
	}
	cfg.Debug = cfg.Debug || o.debug
	return cfg, nil
}

// keyed builds a client for one command invocation. The caller must Close it.
func (o *rootOptions) keyed() (*client.Client, client.KeyedClient, error) {
	cfg, err := o.config()
	if err != nil {
		return nil, client.KeyedClient{}, err
	}
	c, err := client.New(cfg, client.WithLogger(log.Logger))
	if err != nil {
		return nil, client.KeyedClient{}, err
	}
	return c, c.WithKey(o.key()), nil
}

func newRequestCmd(opts *rootOptions) *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:   "request METHOD PATH",
		Short: "Send a signed request and print the response",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, k, err := opts.keyed()
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			ctx, cancel := context.WithTimeout(cmd.Context(), callTimeout)
			defer cancel()

			d := client.Descriptor{Method: args[0], Path: args[1]}
			if data != "" {
				if !json.Valid([]byte(data)) {
					return fmt.Errorf("--data is not valid JSON")
				}
				d.Body = []byte(data)
			}

			start := time.Now()
			resp, err := k.Do(ctx, d)
			if err != nil {
				log.Error().Err(err).Str("method", args[0]).Str("path", args[1]).Dur("elapsed", time.Since(start)).Msg("request failed")
				return err
			}
			log.Debug().Int("status", resp.StatusCode).Dur("elapsed", time.Since(start)).Msg("request completed")

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "HTTP %d\n", resp.StatusCode)
			if len(resp.Body) > 0 {
				writeBody(out, resp.Body)
			}
			if resp.StatusCode >= 300 {
				return client.FromResponse(resp, strings.ToUpper(args[0])+" "+args[1])
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&data, "data", "", "JSON request body")
	return cmd
}

func newSignCmd(opts *rootOptions) *cobra.Command {
	var data string

	cmd := &cobra.Command{
		Use:   "sign METHOD PATH",
		Short: "Print the signature headers for a request without sending it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var body []byte
			if data != "" {
				body = []byte(data)
			}
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			// Resolve exactly as `request` would so the printed signature matches.
			executor, err := request.New(request.Config{Root: cfg.APIURL, Poll: cfg.PollPolicy(), Log: zerolog.Nop()})
			if err != nil {
				return err
			}
			u, err := executor.Resolve(request.Descriptor{Path: args[1]})
			if err != nil {
				return err
			}
			h, err := signature.Signer{}.Sign(opts.key(), args[0], u.RequestURI(), body)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", strings.ToUpper(args[0]), u.RequestURI())
			fmt.Fprintf(out, "%s: %s\n", signature.DateKey, h.Date)
			fmt.Fprintf(out, "%s: %s\n", signature.SignatureVersionKey, h.SignatureVersion)
			fmt.Fprintf(out, "%s: %s\n", signature.ContentMD5Key, h.ContentMD5)
			fmt.Fprintf(out, "%s: %s\n", signature.AuthorizationKey, h.Authorization)
			return nil
		},
	}
	cmd.Flags().StringVar(&data, "data", "", "Request body to digest")
	return cmd
}

func newTrustedKeyCmd(opts *rootOptions) *cobra.Command {
	var user, password string

	cmd := &cobra.Command{
		Use:   "trusted-key LFID",
		Short: "Fetch the signing key of a principal with the integration credential",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			cfg.TrustedUser = user
			cfg.TrustedPassword = password

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			key, err := client.FetchTrustedKey(ctx, cfg, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]string{"keyId": key.KeyID, "secret": key.Secret})
		},
	}
	cmd.Flags().StringVar(&user, "trusted-user", getEnv("CINCO_TRUSTED_USER", ""), "Integration user")
	cmd.Flags().StringVar(&password, "trusted-password", getEnv("CINCO_TRUSTED_PASSWORD", ""), "Integration password")
	return cmd
}

func newGetUserCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get-user ID",
		Short: "Get a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, k, err := opts.keyed()
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()
			ctx, cancel := context.WithTimeout(cmd.Context(), callTimeout)
			defer cancel()

			u, err := k.GetUser(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), u)
		},
	}
}

func newGetProjectCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get-project ID",
		Short: "Get a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, k, err := opts.keyed()
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()
			ctx, cancel := context.WithTimeout(cmd.Context(), callTimeout)
			defer cancel()

			p, err := k.GetProject(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), p)
		},
	}
}

func newMockServerCmd() *cobra.Command {
	var (
		addr, basePath string
		asyncCreate    bool
		principals     []string
	)

	cmd := &cobra.Command{
		Use:   "mock-server",
		Short: "Serve an in-memory CINCO API signed with the development key",
		RunE: func(cmd *cobra.Command, args []string) error {
			srvLog := logger.NewWithWriter("cinco-fakeapi", cmd.ErrOrStderr())
			fake := fakeapi.New(fakeapi.Config{
				BasePath:        basePath,
				Keys:            []signature.Key{devauth.Key()},
				TrustedUser:     devauth.TrustedUser,
				TrustedPassword: devauth.TrustedPassword,
				MaxSkew:         5 * time.Minute,
				AsyncCreate:     asyncCreate,
				Log:             srvLog,
			})
			sort.Strings(principals)
			for _, p := range principals {
				k := fake.AddPrincipal(p)
				srvLog.Info().Str("lfId", p).Str("key_id", k.KeyID).Msg("principal registered")
			}
			srvLog.Info().Str("key_id", devauth.KeyID).Str("trusted_user", devauth.TrustedUser).Msg("development credentials")

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return fake.ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")
	cmd.Flags().StringVar(&basePath, "base-path", "/", "Path prefix of every route")
	cmd.Flags().BoolVar(&asyncCreate, "async-create", true, "Answer project creation with 202 and a job")
	cmd.Flags().StringSliceVar(&principals, "principal", nil, "lfId served by the trusted key endpoint (repeatable)")
	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeBody pretty-prints JSON bodies and copies anything else verbatim.
func writeBody(w io.Writer, body []byte) {
	var v any
	if json.Unmarshal(body, &v) == nil {
		_ = printJSON(w, v)
		return
	}
	fmt.Fprintf(w, "%s\n", body)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
