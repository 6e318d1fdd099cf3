package main

import (
	"context"
	"log"

	"github.com/mvolkova/classkeeper/internal/app"
	"github.com/mvolkova/classkeeper/internal/config"
)

func main() {
	cfg := config.LoadConfig()

	a, err := app.NewApp(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := a.Run(context.Background()); err != nil {
		log.Fatalf("%v", err)
	}
}
