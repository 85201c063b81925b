package event

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/pomofocus/internal/eventbus"
)

func TestSubscribeFiltersByOwner(t *testing.T) {
	bus := eventbus.New()
	r := chi.NewRouter()
	NewServer(bus).Register(r)
	srv := httptest.NewServer(r)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events?userEmail=Ann@Example.com", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	bus.PublishNew(eventbus.TaskCreated, "other", map[string]string{eventbus.MetadataUserEmail: "bob@example.com"})
	bus.PublishNew(eventbus.TaskCreated, "mine", map[string]string{eventbus.MetadataUserEmail: "ann@example.com"})

	sc := bufio.NewScanner(resp.Body)
	var lines []string
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			break
		}
		lines = append(lines, line)
	}
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "id: "))
	assert.Equal(t, "event: task.created", lines[1])

	var ev eventbus.Event
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(lines[2], "data: ")), &ev))
	assert.Equal(t, "mine", ev.ResourceID)
}
