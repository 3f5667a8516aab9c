package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/pkg/profile"
	"golang.org/x/sync/errgroup"
	"lol.mleku.dev/chk"
	"lol.mleku.dev/log"
	"nostrd.dev/app"
	"nostrd.dev/app/config"
	"nostrd.dev/pkg/relayinfo"
	"nostrd.dev/pkg/store"
	"nostrd.dev/pkg/version"
)

func main() {
	runtime.GOMAXPROCS(runtime.NumCPU() * 4)
	var err error
	var cfg *config.C
	if cfg, err = config.New(); chk.T(err) {
	}
	log.I.F("starting %s %s", cfg.AppName, version.V)
	switch cfg.Pprof {
	case "cpu":
		defer profile.Start(profile.CPUProfile).Stop()
	case "memory":
		defer profile.Start(profile.MemProfile).Stop()
	case "allocation":
		defer profile.Start(profile.MemProfileAllocs).Stop()
	}

	ctx, cancel := context.WithCancel(context.Background())

	var st *store.Store
	if st, err = store.Open(cfg.Database, cfg.MaxLimit); chk.E(err) {
		os.Exit(1)
	}

	seed, err := relayinfo.LoadSeed(cfg.RelayInfoFile)
	if chk.E(err) {
		os.Exit(1)
	}
	info := seed.Document(cfg.AppName, version.V, relayinfo.Limits{
		MaxMessageLength:    cfg.MaxMessageLength,
		MaxSubscriptions:    cfg.MaxSubscriptions,
		MaxFilters:          cfg.MaxFilters,
		MaxLimit:            cfg.MaxLimit,
		MaxSubidLength:      cfg.MaxSubidLength,
		MinPowDifficulty:    cfg.MinPowDifficulty,
		AuthRequired:        cfg.AuthRequired,
		RestrictedWrites:    cfg.RestrictedWrites,
		CreatedAtLowerLimit: cfg.CreatedAtLowerLimit,
		CreatedAtUpperLimit: cfg.CreatedAtUpperLimit,
	})

	srv := app.New(ctx, cfg, st, info)

	var g errgroup.Group
	g.Go(func() error {
		srv.RunExpirySweep(ctx)
		return nil
	})

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Listen, cfg.Port),
		Handler: srv,
	}
	g.Go(func() error {
		log.I.F("listening on %s", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	var healthSrv *http.Server
	if cfg.HealthPort > 0 {
		mux := http.NewServeMux()
		mux.HandleFunc(
			"/healthz", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte("ok"))
			},
		)
		healthSrv = &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.Listen, cfg.HealthPort),
			Handler: mux,
		}
		g.Go(func() error {
			log.I.F("health check server listening on %s", healthSrv.Addr)
			if err := healthSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		})
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	<-sigs
	fmt.Printf("\r")
	cancel()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	_ = httpSrv.Shutdown(shutdownCtx)
	if healthSrv != nil {
		_ = healthSrv.Shutdown(shutdownCtx)
	}
	chk.E(st.Close())

	if err := g.Wait(); err != nil {
		log.E.F("shutdown: %v", err)
	}
}
