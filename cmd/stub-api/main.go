package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"glycofy/internal/config"
	"glycofy/internal/logging"
	"glycofy/internal/stubapi"
)

func main() {
	port := flag.Int("port", 8090, "Port to listen on (0 picks a free port)")
	host := flag.String("host", "127.0.0.1", "Interface to bind")
	seed := flag.Bool("seed", true, "Load demo activities and link Strava")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.StubFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	stub := stubapi.New(stubapi.Options{
		Secret:         cfg.StubJWTSecret,
		AllowedOrigins: cfg.StubAllowedOrigins,
		Logger:         logger,
	})
	if *seed {
		seedDemo(stub, time.Now())
	}

	ln, err := net.Listen("tcp", fmt.Sprintf("%s:%d", *host, *port))
	if err != nil {
		logger.Fatal("failed to listen", zap.Error(err))
	}
	// port 0 resolves here; print it for scripts waiting on the stub
	fmt.Printf("http://%s\n", ln.Addr())

	srv := &http.Server{Handler: stub.Handler()}

	go func() {
		logger.Info("stub api listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
}

// seedDemo stores a week of workouts ending today.
func seedDemo(stub *stubapi.Server, now time.Time) {
	demo := []stubapi.Activity{
		{Name: "Morning run", Type: "Run", DurationSec: 2700, DistanceM: 8200, Kcal: 620},
		{Name: "Lunch ride", Type: "Ride", DurationSec: 3600, DistanceM: 25000, Kcal: 780},
		{Name: "Evening yoga", Type: "Yoga", DurationSec: 1800, Kcal: 150},
		{Name: "Pool session", Type: "Swim", DurationSec: 2400, DistanceM: 1800, Kcal: 450},
		{Name: "Gym", Type: "WeightTraining", DurationSec: 3000, Kcal: 320},
	}
	for i, a := range demo {
		day := now.AddDate(0, 0, -i).UTC()
		a.StartTime = time.Date(day.Year(), day.Month(), day.Day(), 7, 0, 0, 0, time.UTC).Format(time.RFC3339)
		stub.AddActivity(stubapi.DemoSubject, a)
	}
	stub.LinkStrava(stubapi.DemoSubject, now.Add(6*time.Hour).Unix())
}
