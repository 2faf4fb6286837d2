// Command bbs-healthcheck reports whether the Meshtastic BBS server is
// alive. It exits 0 when every hard check passes and 1 otherwise, which
// makes it usable as a container HEALTHCHECK.
package main

import (
	"context"
	"os"
	"os/signal"

	"golang.org/x/sys/unix"
)

// Version information (injected via ldflags at build time)
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, unix.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr, os.LookupEnv)
	stop()
	os.Exit(code)
}
