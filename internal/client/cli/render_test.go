package cli

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrijs2005/draftkeeper/internal/client/session"
	"github.com/dmitrijs2005/draftkeeper/internal/client/syncstatus"
	"github.com/dmitrijs2005/draftkeeper/internal/document"
)

func TestDocLabel(t *testing.T) {
	assert.Equal(t, "report/new", docLabel("report", ""))
	assert.Equal(t, "report/d-1", docLabel("report", "d-1"))
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "never", formatTime(time.Time{}))

	ts := time.Date(2024, 5, 1, 9, 30, 0, 0, time.Local)
	assert.Equal(t, "2024-05-01 09:30:00", formatTime(ts))
}

func TestStatusBadge(t *testing.T) {
	for _, s := range []syncstatus.Status{syncstatus.Synced, syncstatus.Pending, syncstatus.Syncing, syncstatus.Offline, syncstatus.Error} {
		assert.Contains(t, statusBadge(s), "["+s.String()+"]")
	}
}

func TestRenderStatus(t *testing.T) {
	var buf bytes.Buffer
	renderStatus(&buf, session.View{
		Kind:      "report",
		RemoteID:  "d-1",
		Status:    syncstatus.Error,
		Dirty:     true,
		LastError: errors.New("boom"),
	})

	out := buf.String()
	assert.Contains(t, out, "report/d-1")
	assert.Contains(t, out, "error")
	assert.Contains(t, out, "Last error")
	assert.Contains(t, out, "boom")
	assert.Contains(t, out, "never")
}

func TestRenderPayload_SortedFields(t *testing.T) {
	var buf bytes.Buffer
	renderPayload(&buf, document.Payload{"b": "two", "a": "one"})

	out := buf.String()
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("one")), bytes.Index(buf.Bytes(), []byte("two")))
	assert.Contains(t, out, "FIELD")
}

func TestRenderDrafts(t *testing.T) {
	var buf bytes.Buffer
	renderDrafts(&buf, []document.Draft{
		{Kind: "report", Payload: document.Payload{"clientName": "Ann"}},
		{Kind: "report", RemoteID: "d-7", Payload: document.Payload{"title": "Roof"}},
	}, document.DefaultPreviewFields)

	out := buf.String()
	assert.Contains(t, out, "report/new")
	assert.Contains(t, out, "clientName: Ann")
	assert.Contains(t, out, "report/d-7")
	assert.Contains(t, out, "title: Roof")
}
