// Command ninepd serves one or more host directory trees over
// 9P2000.L.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/chaos/ninepd"
)

// exportFlag collects repeated -export flags into a []ninepd.Export.
// Each value has the form "aname=root[,ro][,squash=user]".
type exportFlag []ninepd.Export

func (e *exportFlag) String() string {
	var parts []string
	for _, x := range *e {
		parts = append(parts, x.Aname+"="+x.Root)
	}
	return strings.Join(parts, " ")
}

func (e *exportFlag) Set(s string) error {
	aname, rest, ok := strings.Cut(s, "=")
	if !ok {
		return fmt.Errorf("ninepd: malformed -export %q, want aname=root[,opt...]", s)
	}
	fields := strings.Split(rest, ",")
	export := ninepd.Export{Aname: aname, Root: fields[0]}
	for _, opt := range fields[1:] {
		switch {
		case opt == "ro":
			export.ReadOnly = true
		case strings.HasPrefix(opt, "squash="):
			export.SquashUser = strings.TrimPrefix(opt, "squash=")
		default:
			return fmt.Errorf("ninepd: unknown export option %q", opt)
		}
	}
	*e = append(*e, export)
	return nil
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("ninepd", flag.ContinueOnError)
	addr := fs.String("addr", ":5640", "address to listen on")
	msize := fs.Uint("msize", 1<<20, "maximum negotiated message size")
	workers := fs.Int("workers", 16, "worker goroutines per connection")
	var exports exportFlag
	fs.Var(&exports, "export", "aname=root[,ro][,squash=user], repeatable")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if len(exports) == 0 {
		fmt.Fprintln(os.Stderr, "ninepd: at least one -export is required")
		return 1
	}

	logger := log.New(os.Stderr, "ninepd: ", log.LstdFlags)
	cfg := ninepd.Config{
		Addr:    *addr,
		Exports: exports,
		Msize:   uint32(*msize),
		Workers: *workers,
		Logger:  logger,
	}
	srv := ninepd.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		logger.Printf("listen failed: %v", err)
		return 1
	case <-ctx.Done():
	}

	logger.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("shutdown: %v", err)
		return 1
	}
	return 0
}
