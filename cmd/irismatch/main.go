package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go-iris-match/internal/config"
	"go-iris-match/internal/container"
	apperrors "go-iris-match/internal/errors"
	"go-iris-match/internal/logger"
	"go-iris-match/internal/matcher"

	"github.com/sirupsen/logrus"
)

const (
	exitAccepted = 0
	exitRejected = 1
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("irismatch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	backend := fs.String("backend", "", "vision backend: native or opencv (default from IRIS_BACKEND)")
	logLevel := fs.String("log-level", "", "log level: debug, info, warn or error (default from LOG_LEVEL)")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: irismatch [flags] <input-eye> <database-eye>")
		fmt.Fprintln(fs.Output(), "\nLocations may be file paths, file://, http(s):// or azblob://<container>/<blob> URLs.")
		fmt.Fprintln(fs.Output(), "\nFlags:")
		fs.PrintDefaults()
	}

	logger.SetOutput(stderr)

	if err := fs.Parse(args); err != nil {
		return apperrors.ExitUsage
	}
	if fs.NArg() != 2 {
		err := apperrors.NewUsageError(fmt.Sprintf("expected 2 image locations, got %d", fs.NArg()), nil)
		fmt.Fprintf(stderr, "irismatch: %s\n", err.Message)
		fs.Usage()
		return err.ExitCode
	}
	inputPath, dbPath := fs.Arg(0), fs.Arg(1)

	switch b := strings.ToLower(strings.TrimSpace(*backend)); b {
	case "", config.BackendNative, config.BackendOpenCV:
	default:
		return fail(stderr, apperrors.NewUsageError(
			fmt.Sprintf("invalid -backend %q (want %s or %s)", b, config.BackendNative, config.BackendOpenCV), nil))
	}

	cfg, err := config.LoadFromEnv(config.WithBackend(*backend), config.WithLogLevel(*logLevel))
	if err != nil {
		return fail(stderr, apperrors.NewConfigError("invalid configuration", err))
	}
	logger.Configure(cfg.LogLevel, cfg.LogFormat)

	c, err := container.NewContainer(cfg, stdin, stdout)
	if err != nil {
		return fail(stderr, err)
	}

	logger.WithFields(logrus.Fields{
		"backend":  c.Backend(),
		"input":    inputPath,
		"database": dbPath,
	}).Info("Starting iris match")

	result, err := c.Matcher().Match(ctx, inputPath, dbPath)
	if err != nil {
		return fail(stderr, err)
	}

	if result.Verdict == matcher.Accepted {
		return exitAccepted
	}
	return exitRejected
}

func fail(stderr io.Writer, err error) int {
	code := apperrors.GetExitCode(err)
	logger.WithError(err).WithField("exit_code", code).Error("Iris match aborted")
	fmt.Fprintf(stderr, "irismatch: %v\n", err)
	return code
}
