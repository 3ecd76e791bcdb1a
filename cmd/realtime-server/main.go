package main

import (
	"context"
	"net/http"
	"time"

	"playniti-realtime/internal/config"
	"playniti-realtime/internal/game"
	"playniti-realtime/internal/logging"
	"playniti-realtime/internal/realtime"
	"playniti-realtime/internal/store"
	httptransport "playniti-realtime/internal/transport/http"

	"github.com/rs/zerolog/log"
)

func main() {
	logCfg, err := config.LoadLog()
	if err != nil {
		panic(err)
	}
	logging.Init(logCfg)
	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatal().Err(err).Msg("load server config failed")
	}

	var st *store.Store
	if cfg.PostgresDSN != "" {
		st, err = store.New(cfg.PostgresDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("store init failed")
		}
		if err := st.Ping(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("db ping failed")
		}
		defer st.Close()
	} else {
		log.Warn().Msg("POSTGRES_DSN unset, match results will not be persisted")
	}

	coord := realtime.NewServer(realtime.Config{
		MinPlayersToStart:   cfg.MinPlayersToStart,
		MatchDuration:       time.Duration(cfg.MatchDurationSec) * time.Second,
		DefaultRoomCapacity: cfg.DefaultRoomCapacity,
		MaxRoomCapacity:     cfg.MaxRoomCapacity,
	}, st)
	bootstrapRooms(coord)

	r := httptransport.NewRouter(st, coord)
	httptransport.LogRoutes(r)

	// No ReadTimeout here: /ws carries long-lived sockets.
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	log.Info().Str("addr", cfg.HTTPAddr).Msg("realtime listening")
	log.Fatal().Err(server.ListenAndServe()).Msg("server stopped")
}

// bootstrapRooms pre-creates a couple of joinable rooms so fresh deployments
// have codes to hand out before any client issues a JOIN.
func bootstrapRooms(coord *realtime.Server) {
	for _, b := range []struct {
		kind     game.Kind
		capacity int
	}{
		{game.KindSarpniti, 4},
		{game.KindClimb, 2},
	} {
		room := coord.Directory().CreateRoom(b.kind, b.capacity, "")
		log.Info().
			Str("room_id", room.ID).
			Str("code", room.Code).
			Str("game", string(room.Kind)).
			Msg("bootstrap room")
	}
}
