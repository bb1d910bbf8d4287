package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/xtding233/gacha-curve/internal/calculator"
	"github.com/xtding233/gacha-curve/internal/catalog"
	"github.com/xtding233/gacha-curve/internal/config"
	"github.com/xtding233/gacha-curve/internal/httpapi"
	"github.com/xtding233/gacha-curve/internal/rpcapi"
)

const shutdownGrace = 10 * time.Second

func main() {
	config.Init()
	clock := clockwork.NewRealClock()

	loader := catalog.NewLoader(config.DataDir())
	if config.Watch() {
		w, err := catalog.WatchLoader(loader, clock)
		if err != nil {
			log.Fatalf("can't create catalog watcher: %v", err)
		}
		if err := w.Start(); err != nil {
			// Only the built-in catalog is usable without a games directory.
			log.Printf("[watcher] not watching %s: %v", loader.Paths().GamesDir(), err)
		} else {
			defer w.Stop()
		}
	}

	svc, err := calculator.New(loader, calculator.Options{
		CacheSize:     config.CacheSize(),
		MaxPullsLimit: config.MaxPullsLimit(),
		Timeout:       config.ComputeTimeout(),
		Clock:         clock,
	})
	if err != nil {
		log.Fatalf("can't create calculator: %v", err)
	}

	httpSrv := &http.Server{
		Addr:              config.ListenAddress(),
		Handler:           httpapi.NewHandler(svc, httpapi.Options{AllowedOrigins: config.AllowedOrigins(), Clock: clock}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	grpcSrv := rpcapi.NewGRPCServer(svc, clock)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("[http] listening on %s", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		lis, err := net.Listen("tcp", config.GRPCAddress())
		if err != nil {
			return err
		}
		log.Printf("[grpc] listening on %s", lis.Addr())
		return grpcSrv.Serve(lis)
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Println("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		grpcSrv.GracefulStop()
		return httpSrv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		log.Fatalf("server: %v", err)
	}
}
