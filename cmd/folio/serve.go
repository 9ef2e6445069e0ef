package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/eringen/folio"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the API, fragments, feeds and static files",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := folio.New(siteConfig)
		defer app.Close()
		if err := app.Init(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			err := app.Echo.Start(siteConfig.Addr)
			if errors.Is(err, http.ErrServerClosed) {
				err = nil
			}
			errCh <- err
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return app.Echo.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().String("addr", ":3000", "listen address")
	serveCmd.Flags().Bool("watch", false, "reload posts when files change")
	serveCmd.Flags().Bool("raw-html", false, "allow sanitised raw HTML in posts")
	_ = v.BindPFlag("addr", serveCmd.Flags().Lookup("addr"))
	_ = v.BindPFlag("watch", serveCmd.Flags().Lookup("watch"))
	_ = v.BindPFlag("rawHTML", serveCmd.Flags().Lookup("raw-html"))
}
