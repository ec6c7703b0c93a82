package model

// Item is the domain model for a todo entry. ID is unique within a list and
// Text is never blank once the item is stored.
type Item struct {
	ID        string `json:"id" yaml:"id"`
	Text      string `json:"text" yaml:"text"`
	Completed bool   `json:"completed" yaml:"completed"`
}

// New returns a pending item.
func New(id, text string) Item {
	return Item{ID: id, Text: text}
}
