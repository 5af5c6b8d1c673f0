package debugui_test

import (
	"testing"

	"github.com/plus3/linker/engine"
	"github.com/plus3/linker/engine/debugui"
	"github.com/stretchr/testify/assert"
)

func populated(n int) *engine.Engine {
	e := engine.Create()
	for i := 0; i < n; i++ {
		e.Spawn()
	}
	return e
}

func TestEntityBrowserPaging(t *testing.T) {
	e := populated(25)
	browser := debugui.NewEntityBrowser(10)
	browser.Refresh(e.World())

	visible := browser.Visible()
	assert.Len(t, visible, 10)
	assert.Equal(t, engine.EntityId(0), visible[0])

	browser.SetPage(2)
	assert.Equal(t, []engine.EntityId{20, 21, 22, 23, 24}, browser.Visible())

	browser.SetPage(99)
	assert.Equal(t, []engine.EntityId{20, 21, 22, 23, 24}, browser.Visible())
}

func TestEntityBrowserFilterAndSort(t *testing.T) {
	e := populated(25)
	browser := debugui.NewEntityBrowser(10)
	browser.Refresh(e.World())

	browser.SetFilter("2")
	assert.Equal(t, []engine.EntityId{2, 12, 20, 21, 22, 23, 24}, browser.Visible())

	browser.SetSortAscending(false)
	assert.Equal(t, []engine.EntityId{24, 23, 22, 21, 20, 12, 2}, browser.Visible())

	browser.SetFilter("nothing")
	assert.Empty(t, browser.Visible())
}

func TestEntityBrowserRefreshesOnSpawn(t *testing.T) {
	e := populated(3)
	browser := debugui.NewEntityBrowser(10)
	browser.Refresh(e.World())
	assert.Len(t, browser.Visible(), 3)

	e.Spawn()
	browser.Refresh(e.World())
	assert.Equal(t, []engine.EntityId{0, 1, 2, 3}, browser.Visible())
}

func TestEntityBrowserSelection(t *testing.T) {
	browser := debugui.NewEntityBrowser(10)
	_, ok := browser.Selected()
	assert.False(t, ok)

	browser.Select(7)
	id, ok := browser.Selected()
	assert.True(t, ok)
	assert.Equal(t, engine.EntityId(7), id)
}

func TestPerformanceStatsAverage(t *testing.T) {
	stats := debugui.NewPerformanceStats(4)
	assert.Zero(t, stats.AverageFrameTime())

	stats.Record(0.010)
	stats.Record(0.020)
	assert.InDelta(t, 15.0, stats.AverageFrameTime(), 1e-4)

	for i := 0; i < 4; i++ {
		stats.Record(0.005)
	}
	assert.InDelta(t, 5.0, stats.AverageFrameTime(), 1e-4)
}
