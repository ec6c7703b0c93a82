// Package app turns user intents (submit an item, clear the list) into store
// mutations followed by a view update, always in that order.
package app

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Makepad-fr/tada/internal/store"
)

// View is any surface that can show the list: the TUI's ListView or the
// plain panel printer.
type View interface {
	Clear()
	Render(s *store.ItemStore)
}

type Controller struct {
	store *store.ItemStore
	view  View
	log   *zap.Logger
}

type Option func(*Controller)

func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

func New(s *store.ItemStore, v View, opts ...Option) *Controller {
	c := &Controller{store: s, view: v, log: zap.NewNop()}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Controller) Store() *store.ItemStore { return c.store }

// Start restores the persisted list and draws it. Restoring first matters:
// the first frame must never show an empty list that is about to fill up.
func (c *Controller) Start() error {
	if err := c.store.Restore(); err != nil {
		return err
	}
	c.log.Debug("started", zap.Int("items", c.store.Len()))
	c.view.Render(c.store)
	return nil
}

// Submit adds raw as a new item. Blank input is dropped without feedback.
func (c *Controller) Submit(raw string) error {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil
	}
	id := c.NextID()
	if err := c.store.Create(id, text); err != nil {
		if errors.Is(err, store.ErrInvalidInput) {
			return nil
		}
		return err
	}
	c.log.Debug("item added", zap.String("id", id))
	c.view.Render(c.store)
	return nil
}

// ClearAll empties the list. The view is cleared rather than re-rendered;
// the result is known to be empty.
func (c *Controller) ClearAll() error {
	if err := c.store.Clear(); err != nil {
		return err
	}
	c.view.Clear()
	return nil
}

// Toggle and Delete serve the scripted subcommands; the TUI goes through the
// ListView's own controls instead.
func (c *Controller) Toggle(id string) error {
	if err := c.store.Toggle(id); err != nil {
		return err
	}
	c.view.Render(c.store)
	return nil
}

func (c *Controller) Delete(id string) error {
	if err := c.store.Remove(id); err != nil {
		return err
	}
	c.view.Render(c.store)
	return nil
}

// NextID is one more than the last item's id, or "1" for an empty list. When
// the last id is not a plain non-negative number, cannot be incremented, or
// its successor is already taken, the highest such id present is used
// instead. If even that is at the int64 limit, the lowest free id is used.
func (c *Controller) NextID() string {
	items := c.store.Items()
	if len(items) == 0 {
		return "1"
	}
	used := make(map[string]bool, len(items))
	for _, it := range items {
		used[it.ID] = true
	}

	if n, ok := seq(items[len(items)-1].ID); ok && n < math.MaxInt64 {
		if next := strconv.FormatInt(n+1, 10); !used[next] {
			return next
		}
	}
	var highest int64
	for _, it := range items {
		if n, ok := seq(it.ID); ok && n > highest {
			highest = n
		}
	}
	if highest < math.MaxInt64 {
		return strconv.FormatInt(highest+1, 10)
	}
	for n := int64(1); ; n++ {
		if id := strconv.FormatInt(n, 10); !used[id] {
			return id
		}
	}
}

// seq parses an id made only of decimal digits that fits in an int64.
func seq(id string) (int64, bool) {
	if id == "" || id[0] < '0' || id[0] > '9' {
		return 0, false
	}
	n, err := strconv.ParseInt(id, 10, 64)
	return n, err == nil
}
