package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"gopetro/domain/core"
	"gopetro/domain/sample"
	"gopetro/domain/view"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func receive(t *testing.T, ch <-chan RenderEvent) RenderEvent {
	t.Helper()
	select {
	case ev, ok := <-ch:
		require.True(t, ok, "channel closed")
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	return RenderEvent{}
}

func TestBroadcastReachesSessionSubscribers(t *testing.T) {
	defer goleak.VerifyNone(t)
	hub := NewSSEHub(nil)
	defer hub.Close()

	a, b := core.NewSessionID(), core.NewSessionID()
	chA, unsubA := hub.Subscribe(a)
	defer unsubA()
	chB, unsubB := hub.Subscribe(b)
	defer unsubB()

	rd := view.RenderDescription{Title: "Scatter Plot of CV vs HI", XAxis: sample.VariableCV, YAxis: sample.VariableHI}
	hub.PublishRender(a, rd)

	ev := receive(t, chA)
	assert.Equal(t, EventRender, ev.EventType)
	assert.Equal(t, a, ev.SessionID)
	require.NotNil(t, ev.Render)
	assert.Equal(t, rd.Title, ev.Render.Title)
	assert.False(t, ev.Timestamp.IsZero())

	select {
	case ev := <-chB:
		t.Fatalf("unexpected event for other session: %+v", ev)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	defer goleak.VerifyNone(t)
	hub := NewSSEHub(nil)
	defer hub.Close()

	id := core.NewSessionID()
	ch, unsub := hub.Subscribe(id)
	assert.Equal(t, 1, hub.GetClientCount(id))
	assert.Equal(t, []core.SessionID{id}, hub.GetActiveSessions())

	unsub()
	unsub()
	_, ok := <-ch
	assert.False(t, ok)
	assert.Zero(t, hub.GetClientCount(id))
}

func TestCloseClosesClients(t *testing.T) {
	defer goleak.VerifyNone(t)
	hub := NewSSEHub(nil)

	ch, unsub := hub.Subscribe(core.NewSessionID())
	hub.Close()
	unsub()
	_, ok := <-ch
	assert.False(t, ok)

	late, _ := hub.Subscribe(core.NewSessionID())
	_, ok = <-late
	assert.False(t, ok, "subscribing after Close yields a closed channel")
}

// streamRecorder is a recorder gin can stream into while the test reads it
type streamRecorder struct {
	*httptest.ResponseRecorder
	mu     sync.Mutex
	closed chan bool
}

func newStreamRecorder() *streamRecorder {
	return &streamRecorder{ResponseRecorder: httptest.NewRecorder(), closed: make(chan bool, 1)}
}

func (r *streamRecorder) Write(b []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ResponseRecorder.Write(b)
}

func (r *streamRecorder) WriteString(s string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ResponseRecorder.WriteString(s)
}

func (r *streamRecorder) CloseNotify() <-chan bool { return r.closed }

func (r *streamRecorder) body() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Body.String()
}

func TestHandleSSEStreamsEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewSSEHub(nil)
	defer hub.Close()

	id := core.NewSessionID()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := newStreamRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)

	done := make(chan struct{})
	go func() {
		hub.HandleSSE(c, id)
		close(done)
	}()

	require.Eventually(t, func() bool { return hub.GetClientCount(id) == 1 }, time.Second, time.Millisecond)
	hub.PublishRender(id, view.RenderDescription{Title: "Scatter Plot of RQI vs FZI"})
	require.Eventually(t, func() bool {
		return strings.Contains(w.body(), "Scatter Plot of RQI vs FZI")
	}, time.Second, time.Millisecond)

	cancel()
	<-done

	assert.Contains(t, w.body(), "event:render")
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
}
