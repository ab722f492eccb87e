package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alan-mat/brave/internal/config"
	"github.com/alan-mat/brave/server"
	"github.com/alan-mat/brave/worker"
	"github.com/alexflint/go-arg"
)

const (
	ProgramName   = "Brave"
	Version       = "v0.1.0"
	RepositoryUrl = "github.com/alan-mat/brave"
)

type serveCmd struct{}

type workerCmd struct{}

type args struct {
	Search    *searchCmd    `arg:"subcommand:search" help:"run one or more web searches"`
	Summarize *summarizeCmd `arg:"subcommand:summarize" help:"search and print the AI summary"`
	Server    *serveCmd     `arg:"subcommand:serve" help:"start the search API server"`
	Worker    *workerCmd    `arg:"subcommand:work" help:"start the search task worker"`

	Config string `arg:"--config,-c,env:BRAVE_CONFIG" help:"path to the YAML config file"`
}

func (args) Version() string {
	return fmt.Sprintf("%s %s", ProgramName, Version)
}

func (args) Epilogue() string {
	return fmt.Sprintf("For more information visit %s", RepositoryUrl)
}

func main() {
	var args args

	p, err := arg.NewParser(arg.Config{Program: strings.ToLower(ProgramName)}, &args)
	if err != nil {
		log.Fatalf("there was an error in the definition of the Go struct: %v", err)
	}
	p.MustParse(os.Args[1:])

	if p.Subcommand() == nil {
		p.WriteUsage(os.Stdout)
		os.Exit(0)
	}

	conf, err := config.Read(args.Config)
	if err != nil {
		log.Fatalf("failed to read config: %v", err)
	}

	logger, closer := conf.Log.NewLogger(os.Stderr)
	defer closer.Close()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cmd func(context.Context, *config.Config) error

	switch c := p.Subcommand().(type) {
	case *searchCmd:
		cmd = c.run
	case *summarizeCmd:
		cmd = c.run
	case *serveCmd:
		cmd = startServer
	case *workerCmd:
		cmd = startWorker
	default:
		p.FailSubcommand("unrecognized command", p.SubcommandNames()...)
	}

	if err := cmd(ctx, conf); err != nil {
		slog.Error("command failed", "err", err)
		stop()
		closer.Close()
		os.Exit(1)
	}
}

func startServer(ctx context.Context, conf *config.Config) error {
	return server.Serve(ctx, conf)
}

func startWorker(ctx context.Context, conf *config.Config) error {
	return worker.New(conf, slog.Default()).Start()
}
