// Package host connects the chart pipeline to its embedding
// environment: payloads are delivered one at a time to a Coordinator,
// which renders them and replaces the content of a Mount.
// The mount is then served over HTTP.
package host

import (
	"sync"

	"github.com/benoitkugler/okchart/chart"
	"github.com/benoitkugler/okchart/svgdraw"
)

// Mount is the single container of the rendered chart.
// It is safe for concurrent use: readers see either the
// previous or the next complete scene.
type Mount struct {
	mu         sync.RWMutex
	scene      *svgdraw.Scene
	report     chart.Report
	generation uint64
}

// Replace sets the mounted scene, discarding the previous one.
func (m *Mount) Replace(scene *svgdraw.Scene, report chart.Report) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scene, m.report = scene, report
	m.generation++
}

// Clear removes the mounted scene.
func (m *Mount) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scene, m.report = nil, chart.Report{}
	m.generation++
}

// Current returns the mounted scene, or nil if the mount is empty.
func (m *Mount) Current() (*svgdraw.Scene, chart.Report) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.scene, m.report
}

// Generation is incremented by every Replace or Clear.
func (m *Mount) Generation() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.generation
}
