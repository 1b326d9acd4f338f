//go:build integration

package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const testBucket = "urban-match-test"

func startMinio(t *testing.T) *s3.Client {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if exec.CommandContext(ctx, "docker", "info").Run() != nil {
		t.Skip("Skipping test: Docker not available")
	}

	container, err := testcontainers.GenericContainer(context.Background(), testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "minio/minio:latest",
			ExposedPorts: []string{"9000/tcp"},
			Cmd:          []string{"server", "/data"},
			Env: map[string]string{
				"MINIO_ROOT_USER":     "urbanmatch",
				"MINIO_ROOT_PASSWORD": "urbanmatch-secret",
			},
			WaitingFor: wait.ForHTTP("/minio/health/live").
				WithPort("9000/tcp").
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(context.Background())
	require.NoError(t, err)
	port, err := container.MappedPort(context.Background(), "9000/tcp")
	require.NoError(t, err)

	client := s3.New(s3.Options{
		Region:       "us-east-1",
		Credentials:  credentials.NewStaticCredentialsProvider("urbanmatch", "urbanmatch-secret", ""),
		BaseEndpoint: aws.String(fmt.Sprintf("http://%s:%s", host, port.Port())),
		UsePathStyle: true,
	})
	_, err = client.CreateBucket(context.Background(), &s3.CreateBucketInput{Bucket: aws.String(testBucket)})
	require.NoError(t, err)
	return client
}

func TestS3ServiceRoundTrip(t *testing.T) {
	svc := NewS3Service(startMinio(t))
	ctx := context.Background()

	for _, key := range []string{"snapshots/a.json", "snapshots/b.json", "other/c.json"} {
		location, err := svc.PutObject(ctx, strings.NewReader(`{"key":"`+key+`"}`), PutOptions{
			Bucket:      testBucket,
			Key:         "/" + key,
			ContentType: "application/json",
		})
		require.NoError(t, err)
		assert.Equal(t, "s3://"+testBucket+"/"+key, location)
	}

	objects, err := svc.ListObjects(ctx, testBucket, "snapshots/")
	require.NoError(t, err)
	require.Len(t, objects, 2)
	assert.Equal(t, "snapshots/a.json", objects[0].Key)
	assert.Positive(t, objects[0].Size)
	require.NotNil(t, objects[0].LastModified)

	body, err := svc.GetObject(ctx, testBucket, "snapshots/b.json")
	require.NoError(t, err)
	data, err := io.ReadAll(body)
	body.Close()
	require.NoError(t, err)
	assert.JSONEq(t, `{"key":"snapshots/b.json"}`, string(data))

	url, err := svc.GetObjectURL(ctx, testBucket, "snapshots/a.json", time.Minute)
	require.NoError(t, err)
	resp, err := http.Get(url)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, svc.DeleteObject(ctx, testBucket, "snapshots/a.json"))
	objects, err = svc.ListObjects(ctx, testBucket, "snapshots/")
	require.NoError(t, err)
	require.Len(t, objects, 1)
	assert.Equal(t, "snapshots/b.json", objects[0].Key)

	_, err = svc.GetObject(ctx, testBucket, "snapshots/a.json")
	assert.Error(t, err)
}
