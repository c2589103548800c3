package resumesrv

import (
	"context"
	"testing"
	"time"

	"github.com/Abraxas-365/resumelens/pkg/errx"
	"github.com/Abraxas-365/resumelens/recruitment/resume"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_StopsOnTerminalStatus(t *testing.T) {
	g := newFakeGateway()
	g.put("1", resume.StatusProcessing)
	g.analysis["1"] = []byte(analysisJSON)
	g.jobs["1"] = []byte(jobsJSON)
	c := NewController(g)
	_, err := c.Open(context.Background(), "1")
	require.NoError(t, err)

	go func() {
		time.Sleep(1500 * time.Millisecond)
		g.put("1", resume.StatusCompleted)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	vm, err := NewWatcher(c, time.Second).Watch(ctx)
	require.NoError(t, err)
	require.NotNil(t, vm.Status)
	assert.Equal(t, resume.StatusCompleted, vm.Status.Status)
	assert.Equal(t, 1, g.count("analysis"))
}

func TestWatcher_ReturnsImmediatelyWhenSettled(t *testing.T) {
	g := completedGateway()
	c := NewController(g)
	_, err := c.Open(context.Background(), "1")
	require.NoError(t, err)

	vm, err := NewWatcher(c, time.Second).Watch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, resume.StatusCompleted, vm.Status.Status)
	assert.Equal(t, 1, g.count("resume"))
}

func TestWatcher_StopsOnFetchFailure(t *testing.T) {
	g := newFakeGateway()
	g.put("1", resume.StatusPending)
	c := NewController(g)
	_, err := c.Open(context.Background(), "1")
	require.NoError(t, err)

	g.mu.Lock()
	g.resumeErr = resume.ErrGatewayUnavailable(assert.AnError)
	g.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err = NewWatcher(c, time.Second).Watch(ctx)
	require.Error(t, err)
	assert.True(t, errx.Is(err, resume.CodeGatewayUnavailable))
	assert.Equal(t, 2, g.count("resume"))
}

func TestWatcher_Cancelled(t *testing.T) {
	g := newFakeGateway()
	g.put("1", resume.StatusPending)
	c := NewController(g)
	_, err := c.Open(context.Background(), "1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err = NewWatcher(c, time.Second).Watch(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWatcher_NoSelection(t *testing.T) {
	_, err := NewWatcher(NewController(newFakeGateway()), time.Second).Watch(context.Background())
	assert.True(t, errx.Is(err, resume.CodeNoResumeSelected))
}
