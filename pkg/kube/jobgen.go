package kube

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/PhantomInTheWire/square-tiles/pkg/grid"
	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	meta "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/retry"
)

const (
	appLabel      = "square-tile-processor"
	maxNameLength = 63
)

// Config describes the Job created for every tile. Command runs in a shell
// inside Image with the tile described by environment variables:
// INPUT_URL, OUTPUT_URL, TILE_ROW, TILE_COL and TILE_SIZE.
type Config struct {
	Namespace  string `yaml:"namespace"`
	Image      string `yaml:"image"`
	Command    string `yaml:"command"`
	BucketURL  string `yaml:"bucket_url"`
	Kubeconfig string `yaml:"kubeconfig"`
}

func int32Ptr(i int32) *int32 { return &i }

var invalidName = regexp.MustCompile(`[^a-z0-9-]+`)

func sanitize(s string) string {
	return strings.Trim(invalidName.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

// JobName returns a DNS-1123 compliant Job name for a tile of a run.
func JobName(runID string, row, col int) string {
	id := sanitize(runID)
	suffix := fmt.Sprintf("-%d-%d", row, col)

	name := "tile-" + id
	if len(name)+len(suffix) > maxNameLength {
		name = strings.TrimRight(name[:maxNameLength-len(suffix)], "-")
	}
	return name + suffix
}

// NewJob builds the Job that processes one tile.
func NewJob(cfg Config, runID string, t grid.Tile, name string) *batchv1.Job {
	jobName := JobName(runID, t.Row, t.Col)
	base := strings.TrimSuffix(cfg.BucketURL, "/")
	run := sanitize(runID)
	if len(run) > maxNameLength {
		run = strings.TrimRight(run[:maxNameLength], "-")
	}
	labels := map[string]string{
		"app": appLabel,
		"run": run,
	}

	return &batchv1.Job{
		ObjectMeta: meta.ObjectMeta{
			Name:      jobName,
			Namespace: cfg.Namespace,
			Labels:    labels,
		},
		Spec: batchv1.JobSpec{
			BackoffLimit: int32Ptr(1),
			Template: corev1.PodTemplateSpec{
				ObjectMeta: meta.ObjectMeta{
					Labels: map[string]string{"job-name": jobName},
				},
				Spec: corev1.PodSpec{
					RestartPolicy: corev1.RestartPolicyOnFailure,
					Containers: []corev1.Container{{
						Name:    "processor",
						Image:   cfg.Image,
						Command: []string{"sh", "-c", cfg.Command},
						Env: []corev1.EnvVar{
							{Name: "INPUT_URL", Value: fmt.Sprintf("%s/%s", base, name)},
							{Name: "OUTPUT_URL", Value: fmt.Sprintf("%s/processed/%s", base, name)},
							{Name: "TILE_ROW", Value: strconv.Itoa(t.Row)},
							{Name: "TILE_COL", Value: strconv.Itoa(t.Col)},
							{Name: "TILE_SIZE", Value: strconv.Itoa(t.Size)},
						},
					}},
				},
			},
		},
	}
}

// Dispatcher creates tile Jobs in a cluster.
type Dispatcher struct {
	client kubernetes.Interface
	cfg    Config
	logger *slog.Logger
}

// NewDispatcher connects to the cluster named by cfg.Kubeconfig, or the
// default kubeconfig location when it is empty.
func NewDispatcher(cfg Config, logger *slog.Logger) (*Dispatcher, error) {
	path := cfg.Kubeconfig
	if path == "" {
		path = clientcmd.RecommendedHomeFile
	}
	restCfg, err := clientcmd.BuildConfigFromFlags("", path)
	if err != nil {
		return nil, fmt.Errorf("loading kubeconfig: %w", err)
	}
	clientset, err := kubernetes.NewForConfig(restCfg)
	if err != nil {
		return nil, fmt.Errorf("building clientset: %w", err)
	}
	return newDispatcher(clientset, cfg, logger), nil
}

func newDispatcher(client kubernetes.Interface, cfg Config, logger *slog.Logger) *Dispatcher {
	if cfg.Namespace == "" {
		cfg.Namespace = "default"
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Dispatcher{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

// Dispatch creates one Job per tile. names holds the tile object names in
// the same order as layout.Tiles. Every Job is attempted; failures are
// returned together.
func (d *Dispatcher) Dispatch(ctx context.Context, runID string, layout *grid.Layout, names []string) error {
	if len(names) != len(layout.Tiles) {
		return fmt.Errorf("kube: %d names for %d tiles", len(names), len(layout.Tiles))
	}

	var errs []error
	for i, t := range layout.Tiles {
		job := NewJob(d.cfg, runID, t, names[i])
		err := retry.RetryOnConflict(retry.DefaultRetry, func() error {
			_, err := d.client.BatchV1().Jobs(d.cfg.Namespace).Create(ctx, job, meta.CreateOptions{})
			return err
		})
		if err != nil {
			d.logger.Warn("job creation failed", "job", job.Name, "error", err)
			errs = append(errs, fmt.Errorf("kube: creating job for tile %d,%d: %w", t.Row, t.Col, err))
			continue
		}
		d.logger.Info("job created", "job", job.Name, "tile", names[i])
	}
	return errors.Join(errs...)
}
