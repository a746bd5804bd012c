package main

import (
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/Om-Tiwari/UNOArena/internal/bot"
	"github.com/Om-Tiwari/UNOArena/internal/cache"
	"github.com/Om-Tiwari/UNOArena/internal/config"
	"github.com/Om-Tiwari/UNOArena/internal/game"
	"github.com/Om-Tiwari/UNOArena/internal/ws"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config file")
	flag.Parse()

	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// API keys and local overrides come from .env when present.
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file, using process environment")
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.WithError(err).Fatal("failed loading config")
		}
		cfg = loaded
	}

	if cfg.Redis.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := cache.InitRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
			log.WithError(err).Warn("historian disabled, redis unreachable")
		} else {
			log.WithField("addr", cfg.Redis.Addr).Info("historian connected")
		}
		cancel()
	}

	client := bot.NewClient(cfg.Decision.BaseURL, cfg.Decision.Timeout())
	orc := bot.NewOrchestrator(client, log)
	factory := func() *game.Match { return game.NewMatch(cfg, orc, log) }

	mux := http.NewServeMux()
	mux.Handle("/ws", ws.NewServer(factory, log))

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{"status": "ok", "decision": "ok"}
		if err := client.Healthy(r.Context()); err != nil {
			// Bots degrade to the fallback policy; the server itself is fine.
			status["decision"] = "unreachable"
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(status)
	})

	addr := cfg.Server.Addr()
	log.WithField("addr", addr).Info("listening")
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.WithError(err).Fatal("server exited")
	}
}
