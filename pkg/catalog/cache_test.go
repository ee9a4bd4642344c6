// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheCoalescesConcurrentFetches(t *testing.T) {
	c := newCache()
	var calls int32
	release := make(chan struct{})

	fetch := func(ctx context.Context) ([]DatabaseTable, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return []DatabaseTable{{Name: "users"}}, nil
	}

	const n = 5
	var wg sync.WaitGroup
	results := make([][]DatabaseTable, n)
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			tables, err := c.get(context.Background(), "users", fetch)
			require.NoError(t, err)
			results[i] = tables
		}(i)
	}

	time.Sleep(20 * time.Millisecond) // let all goroutines reach the cache miss
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for _, r := range results {
		assert.Equal(t, []DatabaseTable{{Name: "users"}}, r)
	}
}

func TestCacheReusesCompletedResult(t *testing.T) {
	c := newCache()
	var calls int32
	fetch := func(ctx context.Context) ([]DatabaseTable, error) {
		atomic.AddInt32(&calls, 1)
		return []DatabaseTable{{Name: "orders"}}, nil
	}

	_, err := c.get(context.Background(), "orders", fetch)
	require.NoError(t, err)
	_, err = c.get(context.Background(), "orders", fetch)
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCacheDoesNotCacheErrors(t *testing.T) {
	c := newCache()
	var calls int32
	wantErr := errors.New("boom")
	fetch := func(ctx context.Context) ([]DatabaseTable, error) {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			return nil, wantErr
		}
		return []DatabaseTable{{Name: "t"}}, nil
	}

	_, err := c.get(context.Background(), "t", fetch)
	require.ErrorIs(t, err, wantErr)

	tables, err := c.get(context.Background(), "t", fetch)
	require.NoError(t, err)
	assert.Equal(t, []DatabaseTable{{Name: "t"}}, tables)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}
