package tui

import (
	"fmt"
	"slices"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/tada/internal/config"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/store"
	"github.com/Makepad-fr/tada/internal/ui"
)

// DisplayOrder decides where a freshly rendered item lands on screen.
type DisplayOrder int

const (
	// NewestFirst shows the most recently created item on top.
	NewestFirst DisplayOrder = iota
	OldestFirst
)

// Arrange returns items in display order. items is in creation order.
func (o DisplayOrder) Arrange(items []model.Item) []model.Item {
	out := slices.Clone(items)
	if o == NewestFirst {
		slices.Reverse(out)
	}
	return out
}

// ParseOrder maps a config value onto a DisplayOrder, defaulting to NewestFirst.
func ParseOrder(s string) DisplayOrder {
	if s == config.OrderOldestFirst {
		return OldestFirst
	}
	return NewestFirst
}

// Node is one rendered row. It is a snapshot of an Item, never the Item.
type Node struct {
	ID        string
	Text      string // already stripped of escape sequences
	Completed bool
}

func newNode(it model.Item) Node {
	return Node{ID: it.ID, Text: ui.Literal(it.Text), Completed: it.Completed}
}

// Implement list.Item interface
func (n Node) FilterValue() string { return n.Text }

// ListView draws an ItemStore into a bubbles list and routes the per-row
// toggle/delete controls back into that store.
type ListView struct {
	list    list.Model
	order   DisplayOrder
	store   *store.ItemStore
	renders int
}

func NewListView(width, height int, order DisplayOrder) *ListView {
	l := list.New(nil, itemDelegate{}, width, height)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetStatusBarItemName("item", "items")
	l.FilterInput.Prompt = "/ "
	// "d" deletes here; keep it out of the pager.
	l.KeyMap.NextPage.SetKeys("right", "l", "pgdown", "f")
	// Quitting is the Model's call; esc must not end the program.
	l.DisableQuitKeybindings()

	t := ui.Current()
	l.Styles.Title = t.Title
	l.Styles.HelpStyle = t.Muted
	l.Styles.PaginationStyle = t.Muted

	v := &ListView{list: l, order: order}
	v.refreshTitle()
	return v
}

// Clear drops every rendered row.
func (v *ListView) Clear() {
	v.list.ResetFilter()
	v.list.SetItems(nil)
	v.refreshTitle()
}

// Render rebuilds all rows from s and remembers s for the row controls.
func (v *ListView) Render(s *store.ItemStore) {
	v.store = s
	v.Clear()

	items := v.order.Arrange(s.Items())
	rows := make([]list.Item, 0, len(items))
	for _, it := range items {
		rows = append(rows, newNode(it))
	}
	v.list.SetItems(rows)
	v.renders++
	v.refreshTitle()
}

// ToggleSelected flips the selected item in the store, then updates just that
// row. The rest of the list is left alone. The returned command refreshes an
// active filter and may be nil.
func (v *ListView) ToggleSelected() (tea.Cmd, error) {
	n, i, ok := v.selected()
	if !ok {
		return nil, nil
	}
	if err := v.store.Toggle(n.ID); err != nil {
		return nil, err
	}
	n.Completed = !n.Completed
	cmd := v.list.SetItem(i, n)
	v.refreshTitle()
	return cmd, nil
}

// DeleteSelected removes the selected item and rebuilds the list, keeping the
// cursor on the same screen position where possible.
func (v *ListView) DeleteSelected() error {
	n, _, ok := v.selected()
	if !ok {
		return nil
	}
	cursor := v.list.Index()
	if err := v.store.Remove(n.ID); err != nil {
		return err
	}
	v.Render(v.store)
	if last := len(v.list.Items()) - 1; cursor > last {
		cursor = last
	}
	if cursor >= 0 {
		v.list.Select(cursor)
	}
	return nil
}

// SelectNewest moves the cursor onto the most recently created row.
func (v *ListView) SelectNewest() {
	if v.order == NewestFirst {
		v.list.Select(0)
		return
	}
	if n := len(v.list.Items()); n > 0 {
		v.list.Select(n - 1)
	}
}

// Nodes returns the rows in display order.
func (v *ListView) Nodes() []Node {
	out := make([]Node, 0, len(v.list.Items()))
	for _, it := range v.list.Items() {
		if n, ok := it.(Node); ok {
			out = append(out, n)
		}
	}
	return out
}

func (v *ListView) Len() int { return len(v.list.Items()) }

// Renders counts full rebuilds.
func (v *ListView) Renders() int { return v.renders }

func (v *ListView) Select(i int) { v.list.Select(i) }

func (v *ListView) SetSize(w, h int) { v.list.SetSize(w, h) }

func (v *ListView) setExtraHelp(f func() []key.Binding) {
	v.list.AdditionalShortHelpKeys = f
	v.list.AdditionalFullHelpKeys = f
}

func (v *ListView) Filtering() bool { return v.list.FilterState() == list.Filtering }

func (v *ListView) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return cmd
}

func (v *ListView) View() string { return v.list.View() }

// selected resolves the highlighted row to its index in the unfiltered list.
func (v *ListView) selected() (Node, int, bool) {
	if v.store == nil {
		return Node{}, -1, false
	}
	n, ok := v.list.SelectedItem().(Node)
	if !ok {
		return Node{}, -1, false
	}
	for i, it := range v.list.Items() {
		if cur, ok := it.(Node); ok && cur.ID == n.ID {
			return cur, i, true
		}
	}
	return Node{}, -1, false
}

func (v *ListView) refreshTitle() {
	t := ui.Current()
	done, pending := 0, 0
	for _, n := range v.Nodes() {
		if n.Completed {
			done++
		} else {
			pending++
		}
	}
	v.list.Title = fmt.Sprintf("Todos   %s %d  %s %d  %s %d",
		t.Success.Render(t.SymDone), done,
		t.Pending.Render(t.SymPending), pending,
		t.Accent.Render("Total"), done+pending,
	)
}
