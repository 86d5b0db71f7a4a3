package service

import (
	"strconv"
	"sync"
	"testing"

	"scholar-agent-go/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestNotifier_FanOut(t *testing.T) {
	n := NewNotifier()
	a, cancelA := n.Subscribe()
	b, cancelB := n.Subscribe()
	defer cancelB()

	n.Publish(model.SessionSnapshot{Document: "v1"})
	assert.Equal(t, "v1", (<-a).Document)
	assert.Equal(t, "v1", (<-b).Document)

	cancelA()
	cancelA()
	_, open := <-a
	assert.False(t, open)
	assert.Equal(t, 1, n.subscribers())

	n.Publish(model.SessionSnapshot{Document: "v2"})
	assert.Equal(t, "v2", (<-b).Document)
}

func TestNotifier_SlowSubscriberKeepsLatest(t *testing.T) {
	n := NewNotifier()
	ch, cancel := n.Subscribe()
	defer cancel()

	for i := 0; i < subscriberBuffer+5; i++ {
		n.Publish(model.SessionSnapshot{Turns: make([]model.Turn, i)})
	}
	assert.Len(t, ch, subscriberBuffer)

	var last model.SessionSnapshot
	for len(ch) > 0 {
		last = <-ch
	}
	assert.Len(t, last.Turns, subscriberBuffer+4)
}

func TestNotifier_PublishWithKeepsSnapshotOrder(t *testing.T) {
	n := NewNotifier()
	ch, cancel := n.Subscribe()
	defer cancel()

	var (
		mu      sync.Mutex
		version int
		wg      sync.WaitGroup
	)
	snapshot := func() model.SessionSnapshot {
		mu.Lock()
		defer mu.Unlock()
		version++
		return model.SessionSnapshot{Document: strconv.Itoa(version)}
	}
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				n.PublishWith(snapshot)
			}
		}()
	}
	wg.Wait()

	last := 0
	for len(ch) > 0 {
		got, err := strconv.Atoi((<-ch).Document)
		assert.NoError(t, err)
		assert.Greater(t, got, last)
		last = got
	}
	assert.Equal(t, 400, last)
}
