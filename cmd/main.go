package main

import (
	"context"
	"log"
	"os"

	"github.com/GoogleCloudPlatform/functions-framework-go/funcframework"
	tutorguru "github.com/klipach/tutorguru"
)

const defaultPort = "8080"

func main() {
	log.Println("Started")

	// The hosted runtime is too short-lived for background sweeps, so the
	// janitor only runs here.
	if j, err := tutorguru.StartJanitor(context.Background()); err != nil {
		log.Printf("janitor disabled: %v", err)
	} else {
		defer j.Stop()
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}
	if err := funcframework.Start(port); err != nil {
		log.Fatalf("funcframework.Start: %v\n", err)
	}

	log.Println("Done")
}
