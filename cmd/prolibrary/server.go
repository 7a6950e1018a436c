package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/emzola/prolibrary/handler"
	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/time/rate"
)

func (a *app) serve() error {
	// Idle clients lose their rate limiter after three minutes.
	limiters := ttlcache.New(ttlcache.WithTTL[string, *rate.Limiter](3 * time.Minute))
	go limiters.Start()
	defer limiters.Stop()

	h := handler.New(a.config, a.logger, limiters, a.service)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", a.config.Server.Port),
		Handler:      h.Routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// Graceful shutdown
	shutdownError := make(chan error)
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit
		a.logger.PrintInfo("shutting down server", map[string]string{
			"signal": s.String(),
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := srv.Shutdown(ctx)
		if err != nil {
			shutdownError <- err
			return
		}
		a.logger.PrintInfo("completing background tasks", map[string]string{
			"addr": srv.Addr,
		})
		a.service.Close()
		a.wg.Wait()
		shutdownError <- nil
	}()

	// Start server and listen for incoming connections
	a.logger.PrintInfo("starting server", map[string]string{
		"addr":    srv.Addr,
		"env":     a.config.Server.Env,
		"backend": a.config.Remote.Backend,
	})
	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	err = <-shutdownError
	if err != nil {
		return err
	}
	a.logger.PrintInfo("stopped server", map[string]string{
		"addr": srv.Addr,
	})
	return nil
}
