package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pixicode/aws-cloud-archiver/cmd"
	"github.com/pixicode/aws-cloud-archiver/config"
)

func main() {
	cnf, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = cmd.Execute(ctx, cnf)
	stop()
	if err != nil {
		log.Printf("Failed to execute command: %v", err)
		os.Exit(1)
	}
}
