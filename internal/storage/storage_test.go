// File: internal/storage/storage_test.go
package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/einfill/internal/config"
)

func TestSanitizeLegalName(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"Lane Four Capital Partners LLC", "LaneFourCapitalPartnersLLC"},
		{"Acme, Inc.", "AcmeInc"},
		{"Smith & Sons", "SmithSons"},
		{"spin-off ventures", "spin-offventures"},
		{"", "UnknownEntity"},
		{"   ", "UnknownEntity"},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, SanitizeLegalName(tc.input), tc.input)
	}
}

func TestBlobKeys(t *testing.T) {
	assert.Equal(t, "rec-1/AcmeIncEINScreenshot.png", ScreenshotKey("rec-1", "Acme, Inc."))
	assert.Equal(t, "rec-1/AcmeInc_data.json", OutcomeKey("rec-1", "Acme, Inc."))
}

func TestScreenshotFilename(t *testing.T) {
	now := time.Unix(1700000000, 0)
	assert.Equal(t, "print_rec-1_1700000000.png", ScreenshotFilename("rec-1", now))
}

func TestLatestScreenshot(t *testing.T) {
	dir := t.TempDir()
	touch := func(name string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	// Lexicographic order would wrongly prefer the 999... name.
	touch("print_rec-1_999.png")
	touch("print_rec-1_1700000000.png")
	touch("print_rec-1_1600000000.png")
	touch("print_rec-2_1800000000.png")
	touch("print_rec-1_notanumber.png")

	path, err := LatestScreenshot(dir, "rec-1")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "print_rec-1_1700000000.png"), path)

	_, err = LatestScreenshot(dir, "rec-404")
	require.Error(t, err)
}

// fakeS3 records uploads.
type fakeS3 struct {
	lastInput *s3.PutObjectInput
	err       error
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.lastInput = params
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestS3StoreStore(t *testing.T) {
	cfg := config.StorageConfig{Bucket: "ein-artifacts", Region: "us-east-1"}

	t.Run("uploads and returns url", func(t *testing.T) {
		fake := &fakeS3{}
		store := NewS3StoreWithClient(fake, cfg, zaptest.NewLogger(t))

		url, err := store.Store(context.Background(), "rec-1/shot.png", []byte("png"), "image/png")
		require.NoError(t, err)
		assert.Equal(t, "https://ein-artifacts.s3.us-east-1.amazonaws.com/rec-1/shot.png", url)
		require.NotNil(t, fake.lastInput)
		assert.Equal(t, "ein-artifacts", *fake.lastInput.Bucket)
		assert.Equal(t, "rec-1/shot.png", *fake.lastInput.Key)
		assert.Equal(t, "image/png", *fake.lastInput.ContentType)
	})

	t.Run("propagates upload failure", func(t *testing.T) {
		fake := &fakeS3{err: errors.New("access denied")}
		store := NewS3StoreWithClient(fake, cfg, zaptest.NewLogger(t))

		_, err := store.Store(context.Background(), "rec-1/shot.png", []byte("png"), "image/png")
		require.Error(t, err)
	})
}
