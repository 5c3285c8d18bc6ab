// Package view holds the session-scoped controller that turns axis selection
// events into render descriptions.
package view

import (
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"gopetro/domain/core"
	"gopetro/domain/sample"
	"gopetro/domain/view"
	"gopetro/internal"
	"gopetro/internal/dataset"
)

// DatasetProvider hands out the currently published dataset
type DatasetProvider interface {
	Current() *dataset.Dataset
}

// RenderListener receives every successful render, in event order. Listeners
// may read the controller but must not send it events.
type RenderListener func(view.RenderDescription)

// Controller owns one AxisSelection and re-renders it on every selection
// event. Events are handled one at a time; a caller sees either the previous
// state or the complete new one.
type Controller struct {
	logger *internal.Logger

	mu          sync.Mutex
	provider    DatasetProvider
	selection   view.AxisSelection
	initialized bool
	cache       map[string]view.RenderDescription
	cacheFor    core.DatasetVersion

	state atomic.Int32

	notifyMu    sync.Mutex
	listenersMu sync.RWMutex
	listeners   map[int]RenderListener
	nextID      int
}

// NewController creates an uninitialized controller
func NewController(logger *internal.Logger) *Controller {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &Controller{
		logger:    logger,
		selection: view.DefaultSelection(),
		listeners: make(map[int]RenderListener),
	}
}

// Initialize binds the controller to provider, resets the selection to the
// default axes and returns the first render
func (c *Controller) Initialize(provider DatasetProvider) (view.RenderDescription, error) {
	c.mu.Lock()
	c.provider = provider
	c.selection = view.DefaultSelection()
	c.initialized = true
	c.cache = nil
	return c.renderLocked(c.selection)
}

// Selection returns the current axis selection
func (c *Controller) Selection() view.AxisSelection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selection
}

// State reports whether a render is in progress
func (c *Controller) State() view.State {
	return view.State(c.state.Load())
}

// OnAxisChanged sets one axis to the named variable and renders
func (c *Controller) OnAxisChanged(axis view.Axis, variable string) (view.RenderDescription, error) {
	return c.HandleSelectionChanged(view.SelectionChanged{Axis: axis, Variable: variable})
}

// SetSelection replaces both axes in a single event
func (c *Controller) SetSelection(sel view.AxisSelection) (view.RenderDescription, error) {
	return c.HandleSelectionChanged(view.SelectionChanged{Selection: &sel})
}

// Render re-renders the current selection, picking up a refreshed dataset
func (c *Controller) Render() (view.RenderDescription, error) {
	c.mu.Lock()
	if !c.initialized {
		c.mu.Unlock()
		return view.RenderDescription{}, core.NewDatasetUnavailableError("view is not initialized", nil)
	}
	return c.renderLocked(c.selection)
}

// Current projects the current selection without notifying listeners. Reads
// use it so that polling a view does not push renders to subscribers.
func (c *Controller) Current() (view.RenderDescription, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.initialized {
		return view.RenderDescription{}, core.NewDatasetUnavailableError("view is not initialized", nil)
	}
	var ds *dataset.Dataset
	if c.provider != nil {
		ds = c.provider.Current()
	}
	if ds == nil {
		return view.RenderDescription{}, core.NewDatasetUnavailableError("no dataset has been loaded", nil)
	}
	return Project(ds, c.selection), nil
}

// HandleSelectionChanged is the single entry point for selection events. An
// invalid event leaves the selection untouched and returns core.ErrInvalidAxis.
func (c *Controller) HandleSelectionChanged(evt view.SelectionChanged) (view.RenderDescription, error) {
	c.mu.Lock()
	if !c.initialized {
		c.mu.Unlock()
		return view.RenderDescription{}, core.NewDatasetUnavailableError("view is not initialized", nil)
	}

	next, err := c.nextSelection(evt)
	if err != nil {
		c.mu.Unlock()
		c.logger.Debug("Rejected selection event: %v", err)
		return view.RenderDescription{}, err
	}
	return c.renderLocked(next)
}

func (c *Controller) nextSelection(evt view.SelectionChanged) (view.AxisSelection, error) {
	if evt.Selection != nil {
		sel := view.AxisSelection{
			X: sample.Variable(strings.TrimSpace(string(evt.Selection.X))),
			Y: sample.Variable(strings.TrimSpace(string(evt.Selection.Y))),
		}
		return sel, sel.Validate()
	}

	if evt.Axis != view.AxisX && evt.Axis != view.AxisY {
		return c.selection, core.NewUnknownAxisError(string(evt.Axis))
	}
	v, ok := sample.ParseVariable(strings.TrimSpace(evt.Variable))
	if !ok {
		return c.selection, core.NewInvalidAxisError(string(evt.Axis), evt.Variable)
	}
	return c.selection.With(evt.Axis, v), nil
}

// renderLocked must be called with c.mu held and releases it. The selection
// is committed only when the render succeeds.
func (c *Controller) renderLocked(sel view.AxisSelection) (view.RenderDescription, error) {
	c.state.Store(int32(view.StateRendering))

	var ds *dataset.Dataset
	if c.provider != nil {
		ds = c.provider.Current()
	}
	if ds == nil {
		c.state.Store(int32(view.StateIdle))
		c.mu.Unlock()
		return view.RenderDescription{}, core.NewDatasetUnavailableError("no dataset has been loaded", nil)
	}

	if c.cache == nil || c.cacheFor != ds.Version() {
		c.cache = make(map[string]view.RenderDescription, 4)
		c.cacheFor = ds.Version()
	}
	cached, hit := c.cache[sel.Key()]
	if !hit {
		cached = Project(ds, sel)
		c.cache[sel.Key()] = cached
	}
	// callers own the returned points; the cached slice is never handed out
	rd := cached
	rd.Points = slices.Clone(cached.Points)
	c.selection = sel
	c.state.Store(int32(view.StateIdle))

	c.logger.Trace("Rendered %s (%d points, dataset %s, cached=%t)", sel.Key(), len(rd.Points), ds.Version().Short(), hit)

	// hand over to the notify lock so listeners run in event order without
	// holding the state lock
	c.notifyMu.Lock()
	c.mu.Unlock()
	defer c.notifyMu.Unlock()
	c.notify(rd)
	return rd, nil
}

// Subscribe registers fn and returns a function that removes it
func (c *Controller) Subscribe(fn RenderListener) func() {
	c.listenersMu.Lock()
	defer c.listenersMu.Unlock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	return func() {
		c.listenersMu.Lock()
		defer c.listenersMu.Unlock()
		delete(c.listeners, id)
	}
}

func (c *Controller) notify(rd view.RenderDescription) {
	c.listenersMu.RLock()
	ids := make([]int, 0, len(c.listeners))
	for id := range c.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]RenderListener, 0, len(ids))
	for _, id := range ids {
		fns = append(fns, c.listeners[id])
	}
	c.listenersMu.RUnlock()

	for _, fn := range fns {
		fn(rd)
	}
}
