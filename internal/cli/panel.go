package cli

import (
	"fmt"
	"io"

	xansi "github.com/charmbracelet/x/ansi"

	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/store"
	"github.com/Makepad-fr/tada/internal/tui"
	"github.com/Makepad-fr/tada/internal/ui"
)

const maxLabel = 80

// PanelView prints the whole list as one framed panel each time it is
// drawn. It is the non-interactive counterpart of tui.ListView.
type PanelView struct {
	w     io.Writer
	order tui.DisplayOrder
	group bool // pending first, then done
}

func NewPanelView(w io.Writer, order tui.DisplayOrder, group bool) *PanelView {
	return &PanelView{w: w, order: order, group: group}
}

func (p *PanelView) Clear() { p.print(nil) }

func (p *PanelView) Render(s *store.ItemStore) { p.print(p.order.Arrange(s.Items())) }

func (p *PanelView) print(items []model.Item) {
	t := ui.Current()

	// Header + progress
	d, pend := stats(items)
	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		t.Title.Render("Todos"),
		t.Success.Render(t.SymDone), d,
		t.Pending.Render(t.SymPending), pend,
		t.Accent.Render("Total"), len(items),
	)

	lines := []string{header, t.Muted.Render(ui.ProgressBar(d, len(items), progressLen)), ""}
	if p.group {
		lines = append(lines, groupLines(items)...)
	} else {
		lines = append(lines, flatLines(items)...)
	}
	lines = append(lines, "", t.Muted.Render("Tip: add with `tada add \"Buy milk\"`"))
	fmt.Fprintln(p.w, ui.Panel(lines))
}

func stats(items []model.Item) (done, pending int) {
	for _, it := range items {
		if it.Completed {
			done++
		} else {
			pending++
		}
	}
	return
}

func flatLines(items []model.Item) []string {
	t := ui.Current()
	if len(items) == 0 {
		return []string{t.Muted.Render("no items")}
	}
	width := 0
	for _, it := range items {
		width = max(width, xansi.StringWidth(ui.Literal(it.ID)))
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		id := fmt.Sprintf("%*s", width, ui.Literal(it.ID))
		box := t.Muted.Render(t.BoxUnchecked)
		text := xansi.Truncate(ui.Literal(it.Text), maxLabel, "…")
		if it.Completed {
			box = t.Success.Render(t.BoxChecked)
			text = t.Done.Render(text)
		}
		out = append(out, fmt.Sprintf("%s %s %s", t.Muted.Render(id), box, text))
	}
	return out
}

func groupLines(items []model.Item) []string {
	t := ui.Current()
	var pend, done []model.Item
	for _, it := range items {
		if it.Completed {
			done = append(done, it)
		} else {
			pend = append(pend, it)
		}
	}
	section := func(title string, items []model.Item) []string {
		lines := []string{t.Accent.Render(title)}
		if len(items) == 0 {
			return append(lines, t.Muted.Render("(none)"))
		}
		return append(lines, flatLines(items)...)
	}
	lines := section("Pending", pend)
	lines = append(lines, "")
	return append(lines, section("Done", done)...)
}
