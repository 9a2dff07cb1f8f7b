package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"downloadpage/internal/devserver"
)

func newServeCmd() *cobra.Command {
	addr := ":9999"
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the in-memory development backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			listen := listenAddr(cmd, addr)
			srv := &http.Server{
				Addr:              listen,
				Handler:           devserver.New(devserver.DefaultConfig()),
				ReadHeaderTimeout: 5 * time.Second,
				ReadTimeout:       30 * time.Second,
				WriteTimeout:      time.Minute,
				IdleTimeout:       60 * time.Second,
				ErrorLog:          log.New(os.Stderr, "HTTPERR ", log.LstdFlags|log.Lmicroseconds),
			}
			ln, err := net.Listen("tcp", listen)
			if err != nil {
				return err
			}
			log.Println("Listening on", listen)

			ctx := cmd.Context()
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", addr, "listen address")
	return cmd
}

// listenAddr applies PORT unless --addr was given explicitly.
func listenAddr(cmd *cobra.Command, addr string) string {
	if cmd.Flags().Changed("addr") {
		return addr
	}
	if p := os.Getenv("PORT"); p != "" {
		return ":" + p
	}
	return addr
}
