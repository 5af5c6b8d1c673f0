package debugui

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/linker/engine"
)

// EntityBrowser is a paged, filterable table of entity ids.
type EntityBrowser struct {
	ids           []engine.EntityId
	lastCount     int
	sortAscending bool

	filterText   string
	currentPage  int
	pageSize     int
	selected     engine.EntityId
	haveSelected bool
}

func NewEntityBrowser(pageSize int) *EntityBrowser {
	return &EntityBrowser{
		pageSize:      max(pageSize, 1),
		sortAscending: true,
		lastCount:     -1,
	}
}

func (eb *EntityBrowser) Render(world *engine.World) {
	if !imgui.BeginV("Entity Browser", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	eb.rebuildIfNeeded(world)

	imgui.InputTextWithHint("##search", "Search...", &eb.filterText, imgui.InputTextFlagsNone, nil)
	imgui.SameLine()
	if imgui.Button("Clear Filter") {
		eb.SetFilter("")
	}

	filtered := eb.filtered()
	page, totalPages := eb.page(filtered)

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	if imgui.BeginTableV("EntityTable", 2, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Entity ID")
		imgui.TableSetupColumn("Slot")
		imgui.TableHeadersRow()

		sortSpecs := imgui.TableGetSortSpecs()
		if sortSpecs.SpecsDirty() && sortSpecs.SpecsCount() > 0 {
			eb.SetSortAscending(sortSpecs.Specs().SortDirection() == imgui.SortDirectionAscending)
			sortSpecs.SetSpecsDirty(false)
		}

		for _, id := range page {
			imgui.TableNextRow()

			imgui.TableNextColumn()
			isSelected := eb.haveSelected && eb.selected == id
			if imgui.SelectableBoolV(fmt.Sprintf("%d", id), isSelected, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				eb.Select(id)
			}

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", id.Index()))
		}

		imgui.EndTable()
	}

	if totalPages > 1 {
		imgui.Text(fmt.Sprintf("Page %d / %d (%d entities)", eb.currentPage+1, totalPages, len(filtered)))
		imgui.SameLine()
		if imgui.Button("Prev") && eb.currentPage > 0 {
			eb.currentPage--
		}
		imgui.SameLine()
		if imgui.Button("Next") && eb.currentPage < totalPages-1 {
			eb.currentPage++
		}
	} else {
		imgui.Text(fmt.Sprintf("Total: %d entities", len(filtered)))
	}

	imgui.End()
}

// rebuildIfNeeded refreshes the id cache when the live count changed. Ids
// never change once assigned, so the count is a sufficient version.
func (eb *EntityBrowser) rebuildIfNeeded(world *engine.World) {
	if eb.lastCount == world.Count() {
		return
	}
	eb.lastCount = world.Count()

	eb.ids = eb.ids[:0]
	for entity := range world.Entities() {
		eb.ids = append(eb.ids, entity.Id)
	}
	eb.sort()
}

func (eb *EntityBrowser) sort() {
	slices.Sort(eb.ids)
	if !eb.sortAscending {
		slices.Reverse(eb.ids)
	}
}

func (eb *EntityBrowser) filtered() []engine.EntityId {
	if eb.filterText == "" {
		return eb.ids
	}

	filter := strings.TrimSpace(eb.filterText)
	out := make([]engine.EntityId, 0, len(eb.ids))
	for _, id := range eb.ids {
		if strings.Contains(strconv.FormatUint(uint64(id), 10), filter) {
			out = append(out, id)
		}
	}
	return out
}

// page returns the ids on the current page, clamping the page index when a
// filter shrank the result set.
func (eb *EntityBrowser) page(ids []engine.EntityId) ([]engine.EntityId, int) {
	totalPages := (len(ids) + eb.pageSize - 1) / eb.pageSize
	if eb.currentPage >= totalPages {
		eb.currentPage = max(totalPages-1, 0)
	}

	start := eb.currentPage * eb.pageSize
	end := min(start+eb.pageSize, len(ids))
	return ids[start:end], totalPages
}

// Refresh reloads the ids from world.
func (eb *EntityBrowser) Refresh(world *engine.World) {
	eb.rebuildIfNeeded(world)
}

// Visible returns the ids on the current page after filtering.
func (eb *EntityBrowser) Visible() []engine.EntityId {
	page, _ := eb.page(eb.filtered())
	return page
}

// SetFilter keeps only ids whose decimal form contains text.
func (eb *EntityBrowser) SetFilter(text string) {
	eb.filterText = text
	eb.currentPage = 0
}

func (eb *EntityBrowser) SetSortAscending(ascending bool) {
	if eb.sortAscending == ascending {
		return
	}
	eb.sortAscending = ascending
	eb.sort()
}

// SetPage selects the zero-based page, clamped to the available range.
func (eb *EntityBrowser) SetPage(page int) {
	eb.currentPage = max(page, 0)
}

func (eb *EntityBrowser) Select(id engine.EntityId) {
	eb.selected = id
	eb.haveSelected = true
}

func (eb *EntityBrowser) Selected() (engine.EntityId, bool) {
	return eb.selected, eb.haveSelected
}
