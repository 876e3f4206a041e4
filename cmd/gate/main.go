package main

import (
	"flag"
	"log"
	"net/http"
	"os"

	"tablecraft.gg/internal/demo"
	"tablecraft.gg/internal/engine"
	"tablecraft.gg/internal/persistence/pendingstore"
	"tablecraft.gg/internal/transport/ws"
	"tablecraft.gg/internal/tuning"
)

func main() {
	var (
		addr       = flag.String("addr", "", "http listen address (overrides tuning)")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (optional)")
		storePath  = flag.String("store", "", "pending-record store path (overrides tuning)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[gate] ", log.LstdFlags|log.Lmicroseconds)

	tun := tuning.Default()
	if *tuningPath != "" {
		var err error
		tun, err = tuning.Load(*tuningPath)
		if err != nil {
			logger.Fatalf("tuning: %v", err)
		}
	}
	if *addr != "" {
		tun.ListenAddr = *addr
	}
	if *storePath != "" {
		tun.StorePath = *storePath
	}

	store, err := pendingstore.Open(tun.StorePath)
	if err != nil {
		logger.Fatalf("store: %v", err)
	}
	defer store.Close()

	game := demo.NewGame()
	srv := ws.NewServer(store, logger, tun.MovesMax)
	eng := engine.New(game, engine.WithSignalSink(srv.Observe))
	if err := game.Register(eng); err != nil {
		logger.Fatalf("register: %v", err)
	}
	srv.Bind(eng)
	srv.RequirePlayer(func(name string) bool {
		return game.Player(engine.PlayerID(name)) != nil
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/ws", srv.Handler())

	logger.Printf("listening on %s (store=%s moves_max=%d)", tun.ListenAddr, tun.StorePath, tun.MovesMax)
	if err := http.ListenAndServe(tun.ListenAddr, mux); err != nil {
		logger.Fatalf("listen: %v", err)
	}
}
