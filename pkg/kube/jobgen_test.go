package kube

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/PhantomInTheWire/square-tiles/pkg/grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	meta "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"
)

func envMap(env []corev1.EnvVar) map[string]string {
	m := make(map[string]string, len(env))
	for _, e := range env {
		m[e.Name] = e.Value
	}
	return m
}

func TestJobName(t *testing.T) {
	assert.Equal(t, "tile-abc-0-1", JobName("ABC", 0, 1))
	assert.Equal(t, "tile-my-run-2-3", JobName("__My Run!!", 2, 3))

	long := JobName(strings.Repeat("x", 100), 12, 34)
	assert.LessOrEqual(t, len(long), 63)
	assert.True(t, strings.HasSuffix(long, "-12-34"))
	assert.True(t, strings.HasPrefix(long, "tile-xxx"))
}

func TestNewJob(t *testing.T) {
	cfg := Config{
		Namespace: "tiles",
		Image:     "busybox",
		Command:   "echo $INPUT_URL",
		BucketURL: "http://minio:9000/tiles-bucket/",
	}
	job := NewJob(cfg, "run1", grid.Tile{Row: 1, Col: 2, Size: 64}, "run1/square_1_2.png")

	assert.Equal(t, "tile-run1-1-2", job.Name)
	assert.Equal(t, "tiles", job.Namespace)
	assert.Equal(t, "run1", job.Labels["run"])
	assert.Equal(t, int32(1), *job.Spec.BackoffLimit)

	require.Len(t, job.Spec.Template.Spec.Containers, 1)
	c := job.Spec.Template.Spec.Containers[0]
	assert.Equal(t, "busybox", c.Image)
	assert.Equal(t, []string{"sh", "-c", "echo $INPUT_URL"}, c.Command)

	env := envMap(c.Env)
	assert.Equal(t, "http://minio:9000/tiles-bucket/run1/square_1_2.png", env["INPUT_URL"])
	assert.Equal(t, "http://minio:9000/tiles-bucket/processed/run1/square_1_2.png", env["OUTPUT_URL"])
	assert.Equal(t, "1", env["TILE_ROW"])
	assert.Equal(t, "2", env["TILE_COL"])
	assert.Equal(t, "64", env["TILE_SIZE"])
}

func TestDispatch(t *testing.T) {
	layout, err := grid.Compute(10, 10, 2, 2)
	require.NoError(t, err)
	names := []string{"square_0_0.png", "square_0_1.png", "square_1_0.png", "square_1_1.png"}

	client := fake.NewSimpleClientset()
	d := newDispatcher(client, Config{Image: "busybox"}, nil)

	require.NoError(t, d.Dispatch(context.Background(), "run1", layout, names))

	jobs, err := client.BatchV1().Jobs("default").List(context.Background(), meta.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, jobs.Items, 4)
}

func TestDispatchReportsFailures(t *testing.T) {
	layout, err := grid.Compute(10, 10, 1, 2)
	require.NoError(t, err)

	client := fake.NewSimpleClientset()
	client.PrependReactor("create", "jobs", func(action k8stesting.Action) (bool, runtime.Object, error) {
		job := action.(k8stesting.CreateAction).GetObject().(interface{ GetName() string })
		if job.GetName() == "tile-run1-0-0" {
			return true, nil, errors.New("quota exceeded")
		}
		return false, nil, nil
	})
	d := newDispatcher(client, Config{}, nil)

	err = d.Dispatch(context.Background(), "run1", layout, []string{"a.png", "b.png"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tile 0,0")

	jobs, err := client.BatchV1().Jobs("default").List(context.Background(), meta.ListOptions{})
	require.NoError(t, err)
	require.Len(t, jobs.Items, 1)
	assert.Equal(t, "tile-run1-0-1", jobs.Items[0].Name)
}

func TestDispatchNameCount(t *testing.T) {
	layout, err := grid.Compute(10, 10, 1, 2)
	require.NoError(t, err)

	d := newDispatcher(fake.NewSimpleClientset(), Config{}, nil)
	assert.Error(t, d.Dispatch(context.Background(), "run1", layout, []string{"a.png"}))
}
