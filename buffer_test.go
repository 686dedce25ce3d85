package chanlog

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pushMessage(d *doubleBuffer, msg string) {
	rec := newRecord(LevelInfo, 0, "", 0, "", msg, nil)
	d.push(&rec)
}

func TestDoubleBufferSwap(t *testing.T) {
	d := newDoubleBuffer(4)

	pushMessage(d, "a")
	pushMessage(d, "b")
	assert.Equal(t, 2, d.pending())

	batch := d.swap()
	require.Len(t, batch, 2)
	assert.Equal(t, "a", batch[0].Message())
	assert.Equal(t, "b", batch[1].Message())
	assert.Equal(t, 0, d.pending())

	// Producers write to the new front while the batch is being read
	pushMessage(d, "c")
	assert.Equal(t, "a", batch[0].Message())
	d.reset()

	batch = d.swap()
	require.Len(t, batch, 1)
	assert.Equal(t, "c", batch[0].Message())
	d.reset()

	assert.Empty(t, d.swap())
}

func TestDoubleBufferKeepsCapacity(t *testing.T) {
	d := newDoubleBuffer(8)
	for i := 0; i < 20; i++ {
		pushMessage(d, "grow")
	}
	assert.Equal(t, 20, d.pending(), "pushing past capacity grows instead of dropping")
	assert.Len(t, d.swap(), 20)
	d.reset()

	assert.Empty(t, *d.back)
	assert.GreaterOrEqual(t, cap(*d.back), 20, "growth is kept for reuse")
	assert.Equal(t, 8, cap(*d.front))
}

func TestDoubleBufferResize(t *testing.T) {
	d := newDoubleBuffer(2)
	pushMessage(d, "queued")

	d.resize(64)
	assert.Equal(t, 1, d.pending())
	assert.Equal(t, 64, cap(*d.front))
	assert.Equal(t, 64, cap(*d.back))

	batch := d.swap()
	require.Len(t, batch, 1)
	assert.Equal(t, "queued", batch[0].Message())
}

func TestDoubleBufferConcurrentPush(t *testing.T) {
	d := newDoubleBuffer(16)

	const producers = 4
	const perProducer = 1000
	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				pushMessage(d, "x")
			}
		}()
	}

	total := 0
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	for running := true; running; {
		select {
		case <-done:
			running = false
		default:
		}
		total += len(d.swap())
		d.reset()
	}
	total += len(d.swap())
	d.reset()

	assert.Equal(t, producers*perProducer, total)
}
