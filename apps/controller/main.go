package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path"

	"github.com/PhantomInTheWire/square-tiles/pkg/config"
	"github.com/PhantomInTheWire/square-tiles/pkg/kube"
	"github.com/PhantomInTheWire/square-tiles/pkg/split"
	"github.com/PhantomInTheWire/square-tiles/pkg/storage"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
)

var controllerFlags = []cli.Flag{
	&cli.StringFlag{
		Name:  "run-id",
		Usage: "identifier for this run, used as the object prefix and in job names (default: random)",
	},
	&cli.StringFlag{
		Name:    "endpoint",
		EnvVars: []string{"MINIO_ENDPOINT"},
		Value:   "http://localhost:9000",
		Usage:   "S3 compatible endpoint",
	},
	&cli.StringFlag{
		Name:    "region",
		EnvVars: []string{"MINIO_REGION"},
		Value:   "us-east-1",
	},
	&cli.StringFlag{
		Name:    "access-key",
		EnvVars: []string{"MINIO_ACCESS_KEY"},
	},
	&cli.StringFlag{
		Name:    "secret-key",
		EnvVars: []string{"MINIO_SECRET_KEY"},
	},
	&cli.StringFlag{
		Name:    "bucket",
		EnvVars: []string{"MINIO_BUCKET"},
		Value:   "tiles-bucket",
	},
	&cli.BoolFlag{
		Name:  "no-dispatch",
		Usage: "upload tiles without creating jobs",
	},
	&cli.StringFlag{
		Name:  "namespace",
		Value: "default",
	},
	&cli.StringFlag{
		Name:  "processor-image",
		Value: "ghcr.io/phantominthewire/image-pipeline:latest",
	},
	&cli.StringFlag{
		Name:  "processor-command",
		Value: `curl -s "$INPUT_URL" -o /tmp/in.png && curl -X PUT -T /tmp/in.png "$OUTPUT_URL"`,
	},
	&cli.StringFlag{
		Name:  "bucket-url",
		Usage: "bucket URL as seen from inside the cluster (default: endpoint/bucket)",
	},
	&cli.StringFlag{
		Name:    "kubeconfig",
		EnvVars: []string{"KUBECONFIG"},
	},
}

func storageConfig(c *cli.Context, cfg *config.Config, runID string) storage.Config {
	sc := storage.Config{}
	if cfg.Upload != nil {
		sc = *cfg.Upload
	}
	for name, dst := range map[string]*string{
		"endpoint":   &sc.Endpoint,
		"region":     &sc.Region,
		"access-key": &sc.AccessKey,
		"secret-key": &sc.SecretKey,
		"bucket":     &sc.Bucket,
	} {
		if c.IsSet(name) || *dst == "" {
			*dst = c.String(name)
		}
	}
	sc.Prefix = path.Join(sc.Prefix, runID)
	return sc
}

func kubeConfig(c *cli.Context, cfg *config.Config, sc storage.Config) kube.Config {
	kc := kube.Config{}
	if cfg.Dispatch != nil {
		kc = *cfg.Dispatch
	}
	for name, dst := range map[string]*string{
		"namespace":         &kc.Namespace,
		"processor-image":   &kc.Image,
		"processor-command": &kc.Command,
		"bucket-url":        &kc.BucketURL,
		"kubeconfig":        &kc.Kubeconfig,
	} {
		if c.IsSet(name) || *dst == "" {
			*dst = c.String(name)
		}
	}
	if kc.BucketURL == "" {
		kc.BucketURL = fmt.Sprintf("%s/%s", sc.Endpoint, sc.Bucket)
	}
	return kc
}

func run(c *cli.Context) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	if c.Bool("verbose") {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	cfg, err := config.FromCLI(c)
	if err != nil {
		return cli.Exit(err, 1)
	}
	if err := cfg.Validate(); err != nil {
		return cli.Exit(err, 1)
	}

	runID := c.String("run-id")
	if runID == "" {
		runID = uuid.NewString()
	}
	logger = logger.With("run", runID)

	opts, err := cfg.SplitOptions()
	if err != nil {
		return cli.Exit(err, 1)
	}
	opts.Logger = logger

	s, err := split.New(opts)
	if err != nil {
		return cli.Exit(err, 1)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
	defer stop()

	res, err := s.Split(ctx, cfg.Image, cfg.Rows, cfg.Cols)
	if err != nil {
		return cli.Exit(fmt.Errorf("splitting image: %w", err), 1)
	}
	fmt.Fprintf(c.App.Writer, "Tiles created: %v\n", res.Files)

	sc := storageConfig(c, cfg, runID)
	uploader, err := storage.New(ctx, sc, logger)
	if err != nil {
		return cli.Exit(err, 1)
	}
	if err := uploader.EnsureBucket(ctx); err != nil {
		return cli.Exit(err, 1)
	}
	if err := uploader.Upload(ctx, cfg.Output, res.Files); err != nil {
		return cli.Exit(fmt.Errorf("uploading tiles: %w", err), 1)
	}

	if c.Bool("no-dispatch") {
		return nil
	}

	d, err := kube.NewDispatcher(kubeConfig(c, cfg, sc), logger)
	if err != nil {
		return cli.Exit(err, 1)
	}

	keys := make([]string, len(res.Files))
	for i, name := range res.Files {
		keys[i] = uploader.Key(name)
	}
	if err := d.Dispatch(ctx, runID, res.Layout, keys); err != nil {
		return cli.Exit(fmt.Errorf("dispatching jobs: %w", err), 1)
	}

	return nil
}

func main() {
	app := &cli.App{
		Name:      "controller",
		Usage:     "split an image, publish the tiles and start a job per tile",
		ArgsUsage: "IMAGE ROWS|auto COLS",
		Flags:     append(config.Flags(), controllerFlags...),
		Action:    run,
	}

	if err := app.RunContext(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
