package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"gopetro/domain/core"
	"gopetro/domain/sample"
	"gopetro/domain/view"
	"gopetro/internal/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type memorySource struct {
	mu      sync.Mutex
	samples []sample.Sample
}

func (m *memorySource) LoadSamples(ctx context.Context) ([]sample.Sample, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sample.Sample(nil), m.samples...), nil
}

func (m *memorySource) Describe() string { return "memory" }

func (m *memorySource) add(s sample.Sample) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples = append(m.samples, s)
}

func smp(id string, cv, hi, rqi, fzi float64) sample.Sample {
	return sample.Sample{ID: core.SampleID(id), Measurements: sample.Measurements{CV: cv, HI: hi, RQI: rqi, FZI: fzi}}
}

func loadedStore(t *testing.T) (*dataset.Store, *memorySource) {
	t.Helper()
	src := &memorySource{samples: []sample.Sample{smp("A", 0.1, 0.3, 15, 3.5)}}
	store := dataset.NewStore(src, nil)
	_, err := store.Refresh(t.Context())
	require.NoError(t, err)
	return store, src
}

func TestCreateAndGet(t *testing.T) {
	store, _ := loadedStore(t)
	m := NewManager(store, time.Minute, nil)

	s, rd, err := m.Create()
	require.NoError(t, err)
	assert.Equal(t, "Scatter Plot of CV vs HI", rd.Title)
	assert.Equal(t, 1, m.Count())

	got, err := m.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)

	_, err = m.Get(core.NewSessionID())
	assert.ErrorIs(t, err, core.ErrSessionNotFound)
}

func TestCreateWithoutDataset(t *testing.T) {
	m := NewManager(dataset.NewStore(nil, nil), time.Minute, nil)
	_, _, err := m.Create()
	assert.True(t, core.IsUnavailableError(err))
	assert.Zero(t, m.Count())
}

func TestSessionsHaveIndependentSelections(t *testing.T) {
	store, _ := loadedStore(t)
	m := NewManager(store, time.Minute, nil)

	a, _, err := m.Create()
	require.NoError(t, err)
	b, _, err := m.Create()
	require.NoError(t, err)

	_, err = a.Controller.OnAxisChanged(view.AxisX, "FZI")
	require.NoError(t, err)

	assert.Equal(t, sample.VariableFZI, a.Controller.Selection().X)
	assert.Equal(t, sample.VariableCV, b.Controller.Selection().X)
}

func TestDelete(t *testing.T) {
	store, _ := loadedStore(t)
	m := NewManager(store, time.Minute, nil)
	s, _, err := m.Create()
	require.NoError(t, err)

	require.NoError(t, m.Delete(s.ID))
	assert.ErrorIs(t, m.Delete(s.ID), core.ErrSessionNotFound)
	_, err = m.Get(s.ID)
	assert.ErrorIs(t, err, core.ErrSessionNotFound)
}

func TestSweepExpiresIdleSessions(t *testing.T) {
	store, _ := loadedStore(t)
	m := NewManager(store, time.Minute, nil)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	idle, _, err := m.Create()
	require.NoError(t, err)
	busy, _, err := m.Create()
	require.NoError(t, err)

	now = now.Add(45 * time.Second)
	_, err = m.Get(busy.ID)
	require.NoError(t, err)

	now = now.Add(30 * time.Second)
	assert.Equal(t, 1, m.Sweep())

	_, err = m.Get(idle.ID)
	assert.ErrorIs(t, err, core.ErrSessionNotFound)
	_, err = m.Get(busy.ID)
	assert.NoError(t, err)
}

func TestDatasetSwapReRendersSessions(t *testing.T) {
	store, src := loadedStore(t)
	m := NewManager(store, time.Minute, nil)

	var mu sync.Mutex
	renders := map[core.SessionID][]view.RenderDescription{}
	m.SetRenderSink(func(id core.SessionID, rd view.RenderDescription) {
		mu.Lock()
		defer mu.Unlock()
		renders[id] = append(renders[id], rd)
	})

	s, _, err := m.Create()
	require.NoError(t, err)

	src.add(smp("B", 1.2, 1.5, 8, 1.0))
	_, err = store.Refresh(t.Context())
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	got := renders[s.ID]
	require.Len(t, got, 2, "initial render plus the re-render after the swap")
	assert.Len(t, got[1].Points, 2)
	assert.Equal(t, store.Current().Version(), got[1].DatasetVersion)
}

func TestRunStopsWithContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	store, _ := loadedStore(t)
	m := NewManager(store, time.Millisecond, nil)
	_, _, err := m.Create()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx, time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return m.Count() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}
