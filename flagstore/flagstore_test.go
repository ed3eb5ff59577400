package flagstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemFlagStoreBasics(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	fs := NewMemFlagStore()

	l, err := fs.Recent(ctx, "user1", 10)
	assert.NoError(err)
	assert.Empty(l)

	assert.NoError(fs.Append(ctx, "user1", "buy my thing"))
	assert.NoError(fs.Append(ctx, "user1", "click here now"))
	assert.NoError(fs.Append(ctx, "user1", "buy my thing"))

	l, err = fs.Recent(ctx, "user1", 10)
	assert.NoError(err)
	assert.Equal([]string{"buy my thing", "click here now", "buy my thing"}, l)

	// window smaller than history returns only the most recent entries
	l, err = fs.Recent(ctx, "user1", 2)
	assert.NoError(err)
	assert.Equal([]string{"click here now", "buy my thing"}, l)

	l, err = fs.Recent(ctx, "user2", 10)
	assert.NoError(err)
	assert.Empty(l)
}

func TestRedisFlagStoreBasics(t *testing.T) {
	t.Skip("live test, need redis running locally")
	assert := assert.New(t)
	ctx := context.Background()

	fs, err := NewRedisFlagStore("redis://localhost:6379/0")
	if err != nil {
		t.Fail()
	}

	assert.NoError(fs.Append(ctx, "user1", "one"))
	assert.NoError(fs.Append(ctx, "user1", "two"))
	l, err := fs.Recent(ctx, "user1", 10)
	assert.NoError(err)
	assert.Equal([]string{"one", "two"}, l)
}
