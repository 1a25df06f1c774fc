package session

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/litescript/ls-skychart/internal/render"
	"github.com/litescript/ls-skychart/internal/view"
)

func TestWriteSummaryWithoutScene(t *testing.T) {
	var buf bytes.Buffer
	snap := Snapshot{State: view.New(view.Equatorial, 0, 0, 60), LastError: errors.New("backend down")}
	WriteSummary(&buf, snap, nil, render.Stats{})

	out := buf.String()
	assert.Contains(t, out, "equatorial")
	assert.Contains(t, out, "backend down")
	assert.Contains(t, out, "No scene loaded")
}

func TestWriteSummaryScene(t *testing.T) {
	p := &fakeProvider{scene: basicScene}
	s, _ := newTestSession(t, p)
	s.Start()
	s.Wait()

	stats := render.Stats{Layers: map[string]render.Output{
		"stars": {Drawn: 3, Labeled: 1},
		"zz":    {Drawn: 1},
	}}
	var buf bytes.Buffer
	WriteSummary(&buf, s.Snapshot(), s.Data(), stats)

	out := buf.String()
	assert.Contains(t, out, "Stars")
	assert.Contains(t, out, "Milky Way")
	assert.NotContains(t, out, "No scene loaded")
	assert.Less(t, strings.Index(out, "stars"), strings.Index(out, "zz"))
}

func TestWriteEvents(t *testing.T) {
	var buf bytes.Buffer
	WriteEvents(&buf, nil, 5)
	assert.Contains(t, buf.String(), "No events")

	at := time.Date(2024, 3, 20, 22, 0, 0, 0, time.UTC)
	events := []Event{
		{Type: EventSceneLoaded, Timestamp: at, RequestID: 1},
		{Type: EventSceneStale, Timestamp: at, RequestID: 2},
		{Type: EventSceneFailed, Timestamp: at, RequestID: 3, Detail: "timeout"},
	}
	buf.Reset()
	WriteEvents(&buf, events, 2)
	out := buf.String()
	assert.NotContains(t, out, string(EventSceneLoaded))
	assert.Contains(t, out, string(EventSceneStale))
	assert.Contains(t, out, "timeout")
}

func TestTruncateStr(t *testing.T) {
	assert.Equal(t, "short", truncateStr("short", 8))
	assert.Equal(t, "constel..", truncateStr("constellations", 9))
	assert.Equal(t, "con", truncateStr("constellations", 3))
}
