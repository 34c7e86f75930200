package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ruteri/bitstore/cmd/flags"
	"github.com/ruteri/bitstore/config"
	"github.com/ruteri/bitstore/interfaces"
	"github.com/ruteri/bitstore/sha1store"
	"github.com/ruteri/bitstore/storage"
	"github.com/urfave/cli/v2"
)

const (
	exitNotFound   = 2
	exitInvalidURI = 3
)

var flagOut = &cli.StringFlag{
	Name:    "out",
	Aliases: []string{"o"},
	Usage:   "write the blob to this file instead of stdout",
}

var flagSha1 = &cli.BoolFlag{
	Name:  "sha1",
	Usage: "treat the location as a sha1 store prefix and store the file under its sha1",
}

func main() {
	app := &cli.App{
		Name:  "bitstore",
		Usage: "Read blobs through a fallback chain of stores with a write-back cache",
		Flags: flags.CommonFlags,
		Commands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "fetch a blob through the configured topology",
				ArgsUsage: "<uri>",
				Flags:     []cli.Flag{flagOut},
				Action:    getAction,
			},
			{
				Name:      "put",
				Usage:     "write a file into a single backend",
				ArgsUsage: "<location> <file>",
				Flags:     []cli.Flag{flagSha1},
				Action:    putAction,
			},
			{
				Name:      "check",
				Usage:     "report whether the configured topology accepts a uri",
				ArgsUsage: "<uri>",
				Action:    checkAction,
			},
			{
				Name:      "hash",
				Usage:     "print the sha1 key of a file",
				ArgsUsage: "<file>",
				Action:    hashAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func loadTopology(cCtx *cli.Context, logger *slog.Logger) (*config.Topology, *storage.Factory, error) {
	path := cCtx.String(flags.ConfigFlag.Name)
	topology, err := config.Load(path)
	if err != nil {
		logger.Error("Failed to load topology", slog.String("path", path), "err", err)
		return nil, nil, err
	}
	return topology, storage.NewFactory(topology.Backends, nil, logger), nil
}

func getAction(cCtx *cli.Context) error {
	if cCtx.NArg() != 1 {
		return cli.Exit("expected exactly one uri", 1)
	}
	uri := cCtx.Args().First()
	logger := flags.SetupLogger(cCtx)

	topology, factory, err := loadTopology(cCtx, logger)
	if err != nil {
		return err
	}
	store, err := topology.Build(factory, logger)
	if err != nil {
		logger.Error("Failed to build topology", "err", err)
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	data, err := store.Get(ctx, uri)
	if err != nil {
		return exitError(err)
	}

	if out := cCtx.String(flagOut.Name); out != "" {
		if err := os.WriteFile(out, data, 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		logger.Info("Wrote blob", slog.String("uri", uri), slog.String("path", out), slog.Int("size", len(data)))
		return nil
	}
	_, err = os.Stdout.Write(data)
	return err
}

func putAction(cCtx *cli.Context) error {
	if cCtx.NArg() != 2 {
		return cli.Exit("expected a location and a file", 1)
	}
	location, path := cCtx.Args().Get(0), cCtx.Args().Get(1)
	logger := flags.SetupLogger(cCtx)

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	var backends storage.BackendsConfig
	if _, statErr := os.Stat(cCtx.String(flags.ConfigFlag.Name)); statErr == nil {
		topology, _, err := loadTopology(cCtx, logger)
		if err != nil {
			return err
		}
		backends = topology.Backends
	}
	factory := storage.NewFactory(backends, nil, logger)

	base, err := factory.StoreFor(location)
	if err != nil {
		return exitError(err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	uri := location
	var target interfaces.Store = base
	if cCtx.Bool(flagSha1.Name) {
		uri = sha1store.Sum(data)
		target = sha1store.NewStore(base, location, true, logger)
	}

	if err := storage.Put(ctx, target, uri, data); err != nil {
		return exitError(err)
	}

	logger.Info("Stored blob",
		slog.String("store", target.Name()),
		slog.String("uri", uri),
		slog.Int("size", len(data)))
	fmt.Println(uri)
	return nil
}

func checkAction(cCtx *cli.Context) error {
	if cCtx.NArg() != 1 {
		return cli.Exit("expected exactly one uri", 1)
	}
	uri := cCtx.Args().First()
	logger := flags.SetupLogger(cCtx)

	topology, factory, err := loadTopology(cCtx, logger)
	if err != nil {
		return err
	}
	store, err := topology.Build(factory, logger)
	if err != nil {
		return err
	}

	if err := storage.CheckValid(store, uri); err != nil {
		return exitError(err)
	}
	fmt.Printf("%s accepts %s\n", store.Name(), uri)
	return nil
}

func hashAction(cCtx *cli.Context) error {
	if cCtx.NArg() != 1 {
		return cli.Exit("expected exactly one file", 1)
	}
	data, err := os.ReadFile(cCtx.Args().First())
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	fmt.Println(sha1store.Sum(data))
	return nil
}

func exitError(err error) error {
	switch {
	case errors.Is(err, interfaces.ErrInvalidURI):
		return cli.Exit(err.Error(), exitInvalidURI)
	case errors.Is(err, interfaces.ErrNotFound):
		return cli.Exit(err.Error(), exitNotFound)
	default:
		return err
	}
}
