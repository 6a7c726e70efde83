package main

import (
	"log/slog"
	"os"

	_ "notes/docs"
	"notes/internal/config"
	"notes/internal/server"
)

// @title           Notes Task API
// @version         1.0
// @description     Personal task manager: CRUD over tasks plus a derived report.

// @host      localhost:5000
// @BasePath  /

// @schemes http
func main() {
	cfg := config.Load()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(log)

	s, err := server.Init(cfg, log)
	if err != nil {
		log.Error("server initialization failed", "error", err)
		os.Exit(1)
	}

	if err := s.Run(); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
