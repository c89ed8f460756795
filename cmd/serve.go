package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"taskly/handlers"
	"taskly/middleware"
	"taskly/services"
	"taskly/store"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	coll, err := store.Open(ctx, a.cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := coll.Close(closeCtx); err != nil {
			log.Printf("close store: %v", err)
		}
	}()

	if err := ping(ctx, coll); err != nil {
		return err
	}
	log.Printf("Pinged your deployment. You successfully connected to the %s store!", a.cfg.Store)

	h := handlers.NewTaskHandler(services.NewTaskStore(coll), a.cfg.RequestTimeout)
	srv := &http.Server{
		Addr:    ":" + a.cfg.Port,
		Handler: middleware.Logging(middleware.CORS(a.cfg.AllowedOrigins())(handlers.NewRouter(h))),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("server starting on port %s", a.cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	log.Println("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func ping(ctx context.Context, coll store.Collection) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := coll.Ping(ctx); err != nil {
		return fmt.Errorf("ping store: %w", err)
	}
	return nil
}
