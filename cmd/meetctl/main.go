package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/meetglobe/internal/meetctl"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := meetctl.Main(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
