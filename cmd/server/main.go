package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"todoboard/internal/api"
	"todoboard/internal/config"
	"todoboard/internal/db"
	"todoboard/pkg/imagehost"
	"todoboard/pkg/logger"
	"todoboard/pkg/task"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		logger.Default().Error("load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(&logger.Config{
		Level:      logger.LogLevel(cfg.Log.Level),
		Output:     os.Stderr,
		JSON:       cfg.Log.JSON,
		TimeFormat: time.DateTime,
		Prefix:     "server",
	})
	logger.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.Server.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	tasks := task.NewPgStore(pool)
	if err := tasks.EnsureTable(ctx); err != nil {
		return err
	}

	var images imagehost.Uploader = imagehost.Disabled{}
	if cfg.Cloudinary.Enabled() {
		images = imagehost.NewCloudinary(imagehost.CloudinaryConfig{
			BaseURL:      cfg.Cloudinary.BaseURL,
			CloudName:    cfg.Cloudinary.CloudName,
			UploadPreset: cfg.Cloudinary.UploadPreset,
			Folder:       cfg.Cloudinary.Folder,
		})
	} else {
		log.Warn("image hosting disabled; set CLOUDINARY_CLOUD_NAME and CLOUDINARY_UPLOAD_PRESET")
	}

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Server.Port),
		Handler:           api.New(tasks, images, api.WithLogger(log), api.WithWasmDir(cfg.Server.WasmDir)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("todoboard listening", "addr", srv.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
