package main

import (
	"context"
	"log"

	apiapp "github.com/chaintrack/shipment-tracking-api/internal/app/api"
)

func main() {
	if err := apiapp.Run(context.Background()); err != nil {
		log.Fatalf("shipment tracking API exited: %v", err)
	}
}
