package storage_test

import (
	"context"
	"testing"

	"grid-sync/core/storage"
	"grid-sync/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		useSSL   bool
	}{
		{name: "bare host", endpoint: "localhost:9000"},
		{name: "http scheme stripped", endpoint: "http://localhost:9000"},
		{name: "https scheme stripped", endpoint: "https://s3.amazonaws.com", useSSL: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := storage.NewClient(storage.Config{
				Endpoint:  tt.endpoint,
				AccessKey: "testkey",
				SecretKey: "testsecret",
				UseSSL:    tt.useSSL,
				Bucket:    "grid-snapshots",
				Region:    "us-east-1",
			})
			require.NoError(t, err)
			_, isMinio := client.(*minio.Client)
			assert.True(t, isMinio)
		})
	}
}

func TestNewClient_InvalidEndpoint(t *testing.T) {
	_, err := storage.NewClient(storage.Config{Endpoint: "bad host:9000"})
	assert.Error(t, err)
}

func TestMockClient_RemoveObjects(t *testing.T) {
	m := &mocks.Client{}
	m.On("RemoveObjects", mock.Anything, "grid-snapshots", mock.Anything, mock.Anything).Return(nil)
	ch := make(chan minio.ObjectInfo, 2)
	ch <- minio.ObjectInfo{Key: "grid/a.json"}
	ch <- minio.ObjectInfo{Key: "grid/b.json"}
	close(ch)

	var client storage.Client = m
	for range client.RemoveObjects(context.Background(), "grid-snapshots", ch, minio.RemoveObjectsOptions{}) {
		t.Fatal("unexpected remove error")
	}
	assert.Equal(t, []string{"grid/a.json", "grid/b.json"}, m.Removed)
	m.AssertExpectations(t)
}
