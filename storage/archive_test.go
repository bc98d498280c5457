package storage

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUploader struct {
	mock.Mock
}

func (m *mockUploader) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error) {
	body, _ := io.ReadAll(reader)
	args := m.Called(key, contentType, string(body))
	if res := args.Get(0); res != nil {
		return res.(*UploadResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUploader) GetPublicURL(key string) string {
	return m.Called(key).String(0)
}

func TestArchiveKey(t *testing.T) {
	at := time.Date(2024, 5, 17, 20, 30, 0, 0, time.UTC)
	assert.Equal(t, "tournaments/2024-05-17T20:30:00Z.json", ArchiveKey(at))
}

func TestSnapshotArchiver_Archive(t *testing.T) {
	at := time.Date(2024, 5, 17, 20, 30, 0, 0, time.UTC)
	uploader := new(mockUploader)
	uploader.On("Upload", ArchiveKey(at), "application/json", `{"finished":true}`).
		Return(&UploadResult{Key: ArchiveKey(at), Location: "https://cdn.test/x"}, nil)

	location, err := NewSnapshotArchiver(uploader).Archive(context.Background(), at, []byte(`{"finished":true}`))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/x", location)
	uploader.AssertExpectations(t)
}

func TestSnapshotArchiver_UploadFails(t *testing.T) {
	uploader := new(mockUploader)
	uploader.On("Upload", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("boom"))

	_, err := NewSnapshotArchiver(uploader).Archive(context.Background(), time.Now(), []byte("{}"))
	assert.ErrorContains(t, err, "boom")
}

func TestPublicURL(t *testing.T) {
	assert.Equal(t, "https://cdn.test/tournaments/a.json", publicURL("https://cdn.test", "tournaments/a.json"))
	assert.Equal(t, "https://cdn.test/base/a.json", publicURL("https://cdn.test/base/", "/a.json"))
	assert.Equal(t, "", publicURL("", "a.json"))
}
