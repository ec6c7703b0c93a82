package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Makepad-fr/tada/internal/model"
)

// record is the on-disk shape. Older lists were written with item/checked
// instead of text/completed; both spellings are read, only the new one is written.
type record struct {
	ID        *string `json:"id"`
	Text      *string `json:"text"`
	Item      *string `json:"item"`
	Completed *bool   `json:"completed"`
	Checked   *bool   `json:"checked"`
}

func encode(items []model.Item) (string, error) {
	if items == nil {
		items = []model.Item{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("json marshal: %w", err)
	}
	return string(b), nil
}

// decode validates the whole value before returning anything: one bad
// record makes the value unusable.
func decode(value string) ([]model.Item, error) {
	dec := json.NewDecoder(strings.NewReader(value))
	dec.DisallowUnknownFields()

	var recs []record
	if err := dec.Decode(&recs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedData, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after list", ErrMalformedData)
	}
	if recs == nil {
		return nil, fmt.Errorf("%w: not a list", ErrMalformedData)
	}

	out := make([]model.Item, 0, len(recs))
	seen := make(map[string]struct{}, len(recs))
	for i, r := range recs {
		it, err := r.item()
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrMalformedData, i, err)
		}
		if _, dup := seen[it.ID]; dup {
			return nil, fmt.Errorf("%w: record %d: duplicate id %q", ErrMalformedData, i, it.ID)
		}
		seen[it.ID] = struct{}{}
		out = append(out, it)
	}
	return out, nil
}

func (r record) item() (model.Item, error) {
	if r.ID == nil {
		return model.Item{}, errors.New("missing id")
	}
	text, err := exactlyOne("text", r.Text, "item", r.Item)
	if err != nil {
		return model.Item{}, err
	}
	done, err := exactlyOne("completed", r.Completed, "checked", r.Checked)
	if err != nil {
		return model.Item{}, err
	}
	return model.Item{ID: *r.ID, Text: *text, Completed: *done}, nil
}

func exactlyOne[T any](name string, v *T, alias string, av *T) (*T, error) {
	switch {
	case v != nil && av != nil:
		return nil, fmt.Errorf("both %s and %s set", name, alias)
	case v != nil:
		return v, nil
	case av != nil:
		return av, nil
	}
	return nil, fmt.Errorf("missing %s", name)
}
