package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"blogcms/internal/handlers"
	"blogcms/internal/logger"
	"blogcms/internal/repository"
	"blogcms/internal/repository/db"
	"blogcms/internal/server"
	"blogcms/internal/service"
	"blogcms/internal/storage"

	"github.com/spf13/viper"
)

const defaultMaxUploadBytes = 5 << 20 // 5 MB

func main() {
	// load config.yml first so the log level can come from it
	if err := loadConfig(); err != nil {
		logger.Get("info").Fatalw("error reading config", "err", err)
	}

	log := logger.Get(viper.GetString("log.level"))

	// open DB
	sqlDB, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Fatalw("failed to close sqlite", "err", cerr)
		}
	}()

	// uploaded-images directory
	images, err := storage.NewImageStore(uploadDir(), maxUploadBytes())
	if err != nil {
		log.Fatalw("failed to init image store", "err", err)
	}

	// wire dependencies
	repos := repository.NewRepository(sqlDB)
	services := service.NewService(repos, images, captchaVerifier(log), service.AuthConfig{
		SigningKey: viper.GetString("jwt.secret"),
		TokenTTL:   viper.GetInt("jwt.ttl_minutes"),
	}, log)
	apiHandler := handlers.NewHandler(services, images, handlers.Config{
		CORSOrigin:     viper.GetString("cors.origin"),
		MaxUploadBytes: maxUploadBytes(),
	}, log)

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(srv, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	viper.SetEnvPrefix("blogcms")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	return viper.ReadInConfig()
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "blog.db")
		dbPath = "blog.db"
	}
	return db.InitDB(dbPath)
}

func uploadDir() string {
	if dir := viper.GetString("upload.dir"); dir != "" {
		return dir
	}
	return "public/images"
}

func maxUploadBytes() int64 {
	if n := viper.GetInt64("upload.max_bytes"); n > 0 {
		return n
	}
	return defaultMaxUploadBytes
}

// captchaVerifier returns the real reCAPTCHA verifier when a secret is
// configured, otherwise an allow-all one for local development.
func captchaVerifier(log *logger.Logger) service.CaptchaVerifier {
	secret := viper.GetString("captcha.secret")
	if secret == "" {
		log.Infow("captcha.secret not set; registration CAPTCHA disabled")
		return service.AllowAllVerifier{}
	}
	return service.NewRecaptchaVerifier(secret)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
