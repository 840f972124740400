package main // Entry point package

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/kailashsur/filmyfly/internal/app"
)

func main() {
	_ = godotenv.Load() // optional .env; real environment variables win

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(app.LoadOptions())
	if err != nil {
		log.Fatalf("startup: %v", err)
	}
	runErr := a.Run(ctx)
	if runErr != nil {
		a.Log.Errorf("server: %v", runErr)
	}
	if err := a.Close(); err != nil {
		log.Printf("shutdown: %v", err)
	}
	if runErr != nil {
		os.Exit(1)
	}
}
