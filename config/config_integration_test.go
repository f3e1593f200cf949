//go:build integration

package config

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jmgilman/go/vfs/providertest"
)

// startMinIO runs a MinIO server for the duration of the test and returns
// its endpoint and an admin client.
func startMinIO(t *testing.T) (string, *miniogo.Client) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "minio/minio:latest",
			ExposedPorts: []string{"9000/tcp"},
			Env: map[string]string{
				"MINIO_ROOT_USER":     "minioadmin",
				"MINIO_ROOT_PASSWORD": "minioadmin",
			},
			Cmd:        []string{"server", "/data"},
			WaitingFor: wait.ForHTTP("/minio/health/live").WithPort("9000/tcp"),
		},
		Started: true,
	})
	require.NoError(t, err, "failed to start MinIO container")
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client, err := miniogo.New(endpoint, &miniogo.Options{
		Creds: credentials.NewStaticV4("minioadmin", "minioadmin", ""),
	})
	require.NoError(t, err)
	return endpoint, client
}

func TestIntegration_MinIOMountConformance(t *testing.T) {
	endpoint, client := startMinIO(t)
	t.Setenv("VFS_MINIO_USER", "minioadmin")
	t.Setenv("VFS_MINIO_PASSWORD", "minioadmin")

	providertest.TestSuiteWithConfig(t, func(t *testing.T) providertest.Target {
		bucket := "vfs-" + uuid.NewString()[:8]
		require.NoError(t, client.MakeBucket(context.Background(), bucket, miniogo.MakeBucketOptions{}))

		doc := fmt.Sprintf(`
mounts:
  - type: minio
    volume: "s3:/"
    minio:
      endpoint: %s
      bucket: %s
      access_key: ${VFS_MINIO_USER}
      secret_key: ${VFS_MINIO_PASSWORD}
`, endpoint, bucket)
		table, err := Load(strings.NewReader(doc))
		require.NoError(t, err)

		fsys := newFS(t)
		providers, err := table.Apply(fsys)
		require.NoError(t, err)
		return providertest.Target{FS: fsys, Provider: providers[0], Root: "s3:/"}
	}, providertest.ObjectStoreConfig())
}
