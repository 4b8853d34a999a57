package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/stockroom/stockroom-client/internal/config"
	"github.com/stockroom/stockroom-client/internal/fakeapi"
	"github.com/stockroom/stockroom-client/internal/types"
)

func newMockServerCmd() *cobra.Command {
	var addr, email, password string
	var tokenTTL time.Duration

	cmd := &cobra.Command{
		Use:   "mock-server",
		Short: "Serve an in-memory backend for local development",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				addr = cfg.MockAddr
			}
			srv := fakeapi.New(fakeapi.WithLogger(log.Logger), fakeapi.WithTokenTTL(tokenTTL))
			srv.AddUser(types.User{Email: email, Name: "Demo", Role: "admin"}, password)

			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("listen: %w", err)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serveMock(ctx, ln, srv.Handler(), cmd)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default $STOCKROOM_MOCK_ADDR or :8080)")
	cmd.Flags().StringVar(&email, "email", "demo@stockroom.local", "Seeded account email")
	cmd.Flags().StringVar(&password, "password", "demo", "Seeded account password")
	cmd.Flags().DurationVar(&tokenTTL, "token-ttl", 12*time.Hour, "Lifetime of issued tokens")
	return cmd
}

func serveMock(ctx context.Context, ln net.Listener, h http.Handler, cmd *cobra.Command) error {
	hs := &http.Server{Handler: h, ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- hs.Serve(ln) }()

	log.Info().Str("addr", ln.Addr().String()).Msg("mock backend listening")
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "mock backend on http://%s\n", ln.Addr())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	log.Info().Msg("shutting down mock backend")
	return hs.Shutdown(shutdownCtx)
}
