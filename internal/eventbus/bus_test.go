package eventbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusFanOut(t *testing.T) {
	b := New()
	id1, ch1 := b.Subscribe(1)
	_, ch2 := b.Subscribe(1)

	b.PublishNew(TaskCreated, "task-1", map[string]string{MetadataUserEmail: "a@x.com"})

	for _, ch := range []<-chan *Event{ch1, ch2} {
		ev := <-ch
		assert.Equal(t, TaskCreated, ev.Type)
		assert.Equal(t, "task-1", ev.ResourceID)
		assert.NotEmpty(t, ev.ID)
		assert.Equal(t, "a@x.com", ev.Metadata[MetadataUserEmail])
	}

	b.Unsubscribe(id1)
	_, ok := <-ch1
	assert.False(t, ok)
}

func TestBusDropsWhenFull(t *testing.T) {
	b := New()
	_, ch := b.Subscribe(1)

	b.PublishNew(TaskUpdated, "a", nil)
	b.PublishNew(TaskUpdated, "b", nil)

	ev := <-ch
	require.NotNil(t, ev)
	assert.Equal(t, "a", ev.ResourceID)
	select {
	case ev := <-ch:
		t.Fatalf("unexpected event %v", ev)
	default:
	}
}
