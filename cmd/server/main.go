package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirivellaramudu/code-collab-server/internal/api"
	"github.com/sirivellaramudu/code-collab-server/internal/config"
	"github.com/sirivellaramudu/code-collab-server/internal/directory"
	"github.com/sirivellaramudu/code-collab-server/internal/exec"
	"github.com/sirivellaramudu/code-collab-server/internal/routers"
	"github.com/sirivellaramudu/code-collab-server/internal/session"
	"github.com/sirivellaramudu/code-collab-server/internal/utils"
)

// Seams for tests.
var (
	listenAndServe = http.ListenAndServe
	exitFunc       = defaultExit
	exit           = os.Exit
)

func defaultExit(err error) {
	log.Printf("collab-server exited: %v", err)
	exit(1)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		exitFunc(err)
	}
}

func run(ctx context.Context) error {
	cfg, cfgPath, err := config.Load("")
	if err != nil {
		return err
	}

	logger := utils.NewLoggerWithLevel(cfg.LogLevel)
	if cfgPath != "" {
		logger.Info("loaded config file", "path", cfgPath)
	}
	utils.SetJWTSecret(cfg.JWTSecret)

	hub := session.NewHub(logger)
	runner := exec.NewRunner(cfg.SandboxURL, cfg.SandboxClientID, cfg.SandboxClientSecret)

	var handlers *api.Handlers
	if cfg.RedisAddr != "" {
		dir := directory.NewRoomDirectory(cfg.RedisAddr, logger)
		defer dir.Close()
		hub.SetObserver(dir)
		go dir.SubscribeToRoomEvents(ctx)
		handlers = api.NewHandlers(logger, hub, runner, dir)
	} else {
		handlers = api.NewHandlers(logger, hub, runner, nil)
	}

	logger.Info("collab-server listening", "addr", cfg.Addr)
	return listenAndServe(cfg.Addr, routers.New(cfg, handlers))
}
