package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMediaStorePutMintsDumpKey(t *testing.T) {
	channel := newFakeChannel()
	store := NewMediaStore(channel, testLogger())

	key, err := store.Put(context.Background(), []byte("jpeg-bytes"), "image/jpeg", "d-a")
	require.NoError(t, err)
	assert.Equal(t, "dump:chan-1:msg-1", key)
	assert.Equal(t, []byte("jpeg-bytes"), channel.stored["msg-1"])
}

func TestMediaStorePutFilenameExtension(t *testing.T) {
	channel := newFakeChannel()
	store := NewMediaStore(channel, testLogger())
	ctx := context.Background()

	_, err := store.Put(ctx, []byte("x"), "video/mp4", "d-a")
	require.NoError(t, err)
	_, err = store.Put(ctx, []byte("y"), "image/webp", "d-a")
	require.NoError(t, err)

	// Each upload mints a distinct key.
	assert.Len(t, channel.stored, 2)
}

func TestMediaStorePutFailurePropagates(t *testing.T) {
	channel := newFakeChannel()
	channel.sendErr = errors.New("channel gone")
	store := NewMediaStore(channel, testLogger())

	key, err := store.Put(context.Background(), []byte("x"), "image/png", "d-a")
	assert.Error(t, err)
	assert.Empty(t, key)
	assert.Empty(t, channel.stored, "nothing is stored on failure")
}

func TestMediaStoreResolveRoundTrip(t *testing.T) {
	channel := newFakeChannel()
	store := NewMediaStore(channel, testLogger())
	ctx := context.Background()

	key, err := store.Put(ctx, []byte("x"), "image/jpeg", "d-a")
	require.NoError(t, err)

	url := store.Resolve(ctx, key)
	assert.True(t, strings.HasPrefix(url, "https://cdn.example.com/"), "got %q", url)
}

func TestMediaStoreResolveDeletedMessage(t *testing.T) {
	channel := newFakeChannel()
	store := NewMediaStore(channel, testLogger())

	// Never uploaded; the backing message does not exist.
	url := store.Resolve(context.Background(), "dump:chan-1:msg-404")
	assert.Empty(t, url)
}

func TestMediaStoreResolveFetchFailure(t *testing.T) {
	channel := newFakeChannel()
	store := NewMediaStore(channel, testLogger())
	ctx := context.Background()

	key, err := store.Put(ctx, []byte("x"), "image/jpeg", "d-a")
	require.NoError(t, err)

	channel.fetchErr = errors.New("api down")
	assert.Empty(t, store.Resolve(ctx, key))
}

func TestMediaStoreResolveLegacyKeyPassthrough(t *testing.T) {
	store := NewMediaStore(newFakeChannel(), testLogger())

	legacy := "https://bucket.s3.amazonaws.com/photos/abc.jpg"
	assert.Equal(t, legacy, store.Resolve(context.Background(), legacy))
}

func TestMediaStoreResolveMalformedKey(t *testing.T) {
	store := NewMediaStore(newFakeChannel(), testLogger())
	ctx := context.Background()

	assert.Empty(t, store.Resolve(ctx, "dump:chan-1:"))
	assert.Empty(t, store.Resolve(ctx, "dump::msg-1"))
	assert.Empty(t, store.Resolve(ctx, "dump:only-one-part"))
}

func TestExtensionFor(t *testing.T) {
	assert.Equal(t, "jpeg", extensionFor("image/jpeg"))
	assert.Equal(t, "quicktime", extensionFor("video/quicktime"))
	assert.Equal(t, "jpg", extensionFor("weird"))
}
