package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"bret/internal/api"
	"bret/internal/session"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the trial engine over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if serveAddr != "" {
			cfg.Server.ListenAddr = serveAddr
		}

		db, err := openStore(cfg.Database.Path)
		if err != nil {
			return err
		}
		if db != nil {
			defer db.Close()
		}

		logger := log.New(os.Stdout, "[bret] ", log.LstdFlags)
		sessions := session.New(db, nil, logger)
		server := api.NewServer(sessions, db)

		httpServer := &http.Server{
			Addr:         cfg.Server.ListenAddr,
			Handler:      server.Routes(),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			logger.Printf("listening on %s", cfg.Server.ListenAddr)
			errCh <- httpServer.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			logger.Print("shutting down")
			return httpServer.Shutdown(shutdownCtx)
		}
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
}
