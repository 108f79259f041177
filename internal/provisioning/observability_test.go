package provisioning

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleObserver_Printf(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	o := NewConsoleObserver(&buf, false)

	o.Printf("deploying %s", "rg-akslab-abc123")

	assert.Contains(t, buf.String(), "deploying rg-akslab-abc123")
}

func TestConsoleObserver_EventLevels(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		event Event
		want  string
		quiet bool
	}{
		{"completed", Event{Type: EventPhaseCompleted, Phase: "deploy-rg", Message: "completed in 1s"}, "INFO", false},
		{"warning", Event{Type: EventPhaseWarning, Phase: "deploy-sub", Message: "completed with warnings"}, "WARN", false},
		{"failed", Event{Type: EventPhaseFailed, Phase: "deploy-rg", Message: "failed: boom"}, "ERRO", false},
		{"started is debug", Event{Type: EventPhaseStarted, Phase: "report", Message: "starting"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			NewConsoleObserver(&buf, false).Event(tt.event)

			if tt.quiet {
				assert.Empty(t, buf.String())
				return
			}
			assert.Contains(t, buf.String(), tt.want)
			assert.Contains(t, buf.String(), tt.event.Message)
			assert.Contains(t, buf.String(), "stage="+tt.event.Phase)
		})
	}
}

func TestConsoleObserver_VerboseShowsDebug(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	NewConsoleObserver(&buf, true).Event(Event{Type: EventPhaseStarted, Phase: "report", Message: "starting"})

	assert.Contains(t, buf.String(), "starting")
}

func TestConsoleObserver_WithFields(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	base := NewConsoleObserver(&buf, false)
	lab := base.WithFields(map[string]string{"lab": "abc123"})

	lab.Event(Event{Type: EventResourceDeleted, Message: "resource group deleted", Fields: map[string]string{"type": "resourceGroup"}})

	out := buf.String()
	assert.Contains(t, out, "lab=abc123")
	assert.Contains(t, out, "type=resourceGroup")

	buf.Reset()
	base.Printf("plain")
	assert.NotContains(t, buf.String(), "lab=abc123")
}

func TestConsoleObserver_Section(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	NewConsoleObserver(&buf, false).Section("deploy-rg (2/5)")

	assert.Contains(t, buf.String(), "==> deploy-rg (2/5)")
}

func TestConsoleObserver_Progress(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	o := NewConsoleObserver(&buf, false)

	o.Progress("configure", 2, 4)
	assert.Contains(t, buf.String(), "percent=50")

	buf.Reset()
	o.Progress("configure", 0, 0)
	assert.NotContains(t, buf.String(), "percent")
}

func TestLogHelpers(t *testing.T) {
	t.Parallel()
	o := NewMockObserver()

	LogPhaseStart(o, "deploy-rg")
	LogPhaseComplete(o, "deploy-rg", 1500*time.Millisecond)
	LogPhaseWarning(o, "deploy-sub", errors.New("Defender pricing rejected"))
	LogPhaseSkipped(o, "deploy-sub", ErrSkipped)
	LogPhaseFailed(o, "deploy-rg", errors.New("boom"))
	LogResourceCreating(o, "deploy-rg", "resourceGroup", "rg-akslab-abc123")
	LogResourceCreated(o, "deploy-rg", "resourceGroup", "rg-akslab-abc123", "/subscriptions/x/resourceGroups/rg-akslab-abc123")
	LogResourceFailed(o, "configure", "manifest", "20-rbac.yaml", errors.New("forbidden"))
	LogResourceDeleting(o, "destroy", "resourceGroup", "rg-akslab-abc123")
	LogResourceDeleted(o, "destroy", "resourceGroup", "rg-akslab-abc123")

	events := o.Events()
	require.Len(t, events, 10)
	assert.Equal(t, "completed in 1.5s", events[1].Message)
	assert.Equal(t, "completed with warnings: Defender pricing rejected", events[2].Message)
	assert.Equal(t, "stage skipped", events[3].Message)
	assert.Equal(t, "/subscriptions/x/resourceGroups/rg-akslab-abc123", events[6].Fields["id"])
	assert.Equal(t, "manifest failed: forbidden", events[7].Message)
}

func TestMockObserver_WithFieldsSharesRecording(t *testing.T) {
	t.Parallel()
	o := NewMockObserver()
	child := o.WithFields(map[string]string{"lab": "abc123"})

	child.Event(Event{Type: EventProgress, Message: "x"})
	child.Section("report")

	require.Len(t, o.Events(), 1)
	assert.Equal(t, "abc123", o.Events()[0].Fields["lab"])
	assert.Equal(t, []string{"report"}, o.Sections())
}
