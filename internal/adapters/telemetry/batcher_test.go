package telemetry_test

import (
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/lingo/internal/adapters/telemetry"
)

type collector struct {
	mu     sync.Mutex
	chunks []string
}

func (c *collector) add(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.chunks = append(c.chunks, string(data))
}

func (c *collector) get() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.chunks...)
}

func TestBatchProcessor_FlushOnSize(t *testing.T) {
	c := &collector{}
	bp := telemetry.NewBatchProcessor(5, time.Hour, c.add)
	defer func() { _ = bp.Close() }()

	_, err := bp.Write([]byte("123"))
	require.NoError(t, err)
	assert.Empty(t, c.get())

	_, err = bp.Write([]byte("456"))
	require.NoError(t, err)
	assert.Equal(t, []string{"123456"}, c.get())
}

func TestBatchProcessor_FlushOnTime(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		c := &collector{}
		bp := telemetry.NewBatchProcessor(1024, 50*time.Millisecond, c.add)
		defer func() { _ = bp.Close() }()

		_, err := bp.Write([]byte("line\n"))
		require.NoError(t, err)

		time.Sleep(10 * time.Millisecond)
		synctest.Wait()
		assert.Empty(t, c.get())

		time.Sleep(50 * time.Millisecond)
		synctest.Wait()
		assert.Equal(t, []string{"line\n"}, c.get())
	})
}

func TestBatchProcessor_Close(t *testing.T) {
	c := &collector{}
	bp := telemetry.NewBatchProcessor(1024, time.Hour, c.add)

	_, err := bp.Write([]byte("tail"))
	require.NoError(t, err)
	require.NoError(t, bp.Close())
	assert.Equal(t, []string{"tail"}, c.get())

	_, err = bp.Write([]byte("late"))
	require.Error(t, err)
	require.NoError(t, bp.Close())
	assert.Equal(t, []string{"tail"}, c.get())
}

func TestBatchProcessor_Defaults(t *testing.T) {
	c := &collector{}
	bp := telemetry.NewBatchProcessor(0, 0, c.add)
	defer func() { _ = bp.Close() }()

	_, err := bp.Write(make([]byte, telemetry.DefaultSizeLimit))
	require.NoError(t, err)
	assert.Len(t, c.get(), 1)
}
