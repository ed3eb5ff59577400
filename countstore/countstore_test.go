package countstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemCountStoreBasics(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	cs := NewMemCountStore()

	c, err := cs.GetCount(ctx, CategoryDM, "user1", PeriodHour)
	assert.NoError(err)
	assert.Equal(0, c)

	assert.NoError(cs.Increment(ctx, CategoryDM, "user1", PeriodHour))
	assert.NoError(cs.Increment(ctx, CategoryDM, "user1", PeriodHour))
	c, err = cs.GetCount(ctx, CategoryDM, "user1", PeriodHour)
	assert.NoError(err)
	assert.Equal(2, c)

	// other categories and users are independent
	c, err = cs.GetCount(ctx, CategoryPost, "user1", PeriodDay)
	assert.NoError(err)
	assert.Equal(0, c)
	c, err = cs.GetCount(ctx, CategoryDM, "user2", PeriodHour)
	assert.NoError(err)
	assert.Equal(0, c)

	total, err := cs.TotalCount(ctx, CategoryDM, "user1")
	assert.NoError(err)
	assert.Equal(2, total)
}

func TestMemCountStoreTryIncrement(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	cs := NewMemCountStore()

	for i := 1; i <= 3; i++ {
		ok, c, err := cs.TryIncrement(ctx, CategoryDM, "user1", PeriodHour, 3)
		assert.NoError(err)
		assert.True(ok)
		assert.Equal(i, c)
	}

	ok, c, err := cs.TryIncrement(ctx, CategoryDM, "user1", PeriodHour, 3)
	assert.NoError(err)
	assert.False(ok)
	assert.Equal(3, c)

	// a denied consume does not change the stored count
	c, err = cs.GetCount(ctx, CategoryDM, "user1", PeriodHour)
	assert.NoError(err)
	assert.Equal(3, c)
}

func TestMemCountStoreTryIncrementConcurrent(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	cs := NewMemCountStore()

	// 4 goroutines racing for 10 slots: exactly 10 may win (run with `-race`!)
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	wg.Add(4)
	for i := 0; i < 4; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				ok, _, err := cs.TryIncrement(ctx, CategoryDM, "user1", PeriodHour, 10)
				assert.NoError(err)
				if ok {
					mu.Lock()
					wins++
					mu.Unlock()
				}
				time.Sleep(time.Nanosecond)
			}
		}()
	}
	wg.Wait()

	assert.Equal(10, wins)
	c, err := cs.GetCount(ctx, CategoryDM, "user1", PeriodHour)
	assert.NoError(err)
	assert.Equal(10, c)
}

func TestMemCountStoreTrimBefore(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	cs := NewMemCountStore()
	assert.NoError(cs.Increment(ctx, CategoryDM, "user1", PeriodHour))
	assert.NoError(cs.Increment(ctx, CategoryPost, "user1", PeriodDay))
	assert.NoError(cs.Increment(ctx, CategoryLike, "user1", PeriodHour))

	// cutoff in the past removes nothing
	removed, err := cs.TrimBefore(ctx, time.Now().UTC().Add(-7*24*time.Hour), []string{CategoryDM, CategoryPost})
	assert.NoError(err)
	assert.Equal(0, removed)

	// cutoff in the future removes current dm/post buckets, but never likes
	removed, err = cs.TrimBefore(ctx, time.Now().UTC().Add(48*time.Hour), []string{CategoryDM, CategoryPost})
	assert.NoError(err)
	assert.Equal(2, removed)

	c, err := cs.GetCount(ctx, CategoryDM, "user1", PeriodHour)
	assert.NoError(err)
	assert.Equal(0, c)
	c, err = cs.GetCount(ctx, CategoryLike, "user1", PeriodHour)
	assert.NoError(err)
	assert.Equal(1, c)
}

func TestRedisCountStoreBasics(t *testing.T) {
	t.Skip("live test, need redis running locally")
	assert := assert.New(t)
	ctx := context.Background()

	cs, err := NewRedisCountStore("redis://localhost:6379/0")
	if err != nil {
		t.Fail()
	}

	assert.NoError(cs.Increment(ctx, CategoryDM, "user1", PeriodHour))
	c, err := cs.GetCount(ctx, CategoryDM, "user1", PeriodHour)
	assert.NoError(err)
	assert.Equal(1, c)

	ok, c, err := cs.TryIncrement(ctx, CategoryDM, "user1", PeriodHour, 2)
	assert.NoError(err)
	assert.True(ok)
	assert.Equal(2, c)
	ok, c, err = cs.TryIncrement(ctx, CategoryDM, "user1", PeriodHour, 2)
	assert.NoError(err)
	assert.False(ok)
	assert.Equal(2, c)
}
