package state

import (
	"slices"

	"github.com/aledsdavies/texstack/core/invariant"
)

// Document is an ordered list of items with a selection index in
// [0, Len()]. Index 0 is the position before the first item; index k selects
// item k-1.
type Document struct {
	items     []Item
	selection int
}

// NewDocument creates a document holding items with the last one selected.
func NewDocument(items ...Item) *Document {
	for _, item := range items {
		invariant.NotNil(item, "item")
	}
	return &Document{items: slices.Clip(slices.Clone(items)), selection: len(items)}
}

// Len returns the number of items.
func (d *Document) Len() int { return len(d.items) }

// Items returns the items in order. The slice must not be modified.
func (d *Document) Items() []Item { return d.items }

// SelectionIndex returns the selection index.
func (d *Document) SelectionIndex() int { return d.selection }

// Selected returns the selected item, if any.
func (d *Document) Selected() (Item, bool) {
	if d.selection == 0 {
		return nil, false
	}
	return d.items[d.selection-1], true
}

// InsertItems inserts items below the selection and selects the last one.
func (d *Document) InsertItems(items ...Item) *Document {
	if len(items) == 0 {
		return d
	}
	out := make([]Item, 0, len(d.items)+len(items))
	out = append(out, d.items[:d.selection]...)
	out = append(out, items...)
	out = append(out, d.items[d.selection:]...)
	return &Document{items: out, selection: d.selection + len(items)}
}

// DeleteSelection deletes up to count items ending at the selection and
// selects the item preceding them. At selection index 0 there is nothing to
// delete and d is returned unchanged.
func (d *Document) DeleteSelection(count int) *Document {
	invariant.Precondition(count >= 0, "delete count must not be negative, got %d", count)
	if d.selection == 0 || count == 0 {
		return d
	}
	count = min(count, d.selection)
	start := d.selection - count
	out := make([]Item, 0, len(d.items)-count)
	out = append(out, d.items[:start]...)
	out = append(out, d.items[d.selection:]...)
	return &Document{items: out, selection: start}
}

// WithSelection returns a document with the selection index clamped into
// range. The items are shared.
func (d *Document) WithSelection(index int) *Document {
	index = max(0, min(index, len(d.items)))
	if index == d.selection {
		return d
	}
	return &Document{items: d.items, selection: index}
}

// MoveSelection shifts the selection index by delta, clamped.
func (d *Document) MoveSelection(delta int) *Document {
	return d.WithSelection(d.selection + delta)
}

// ShiftSelected moves the selected item delta positions up (negative) or
// down the document, keeping it selected. The move is clamped at either end.
func (d *Document) ShiftSelected(delta int) *Document {
	if d.selection == 0 {
		return d
	}
	from := d.selection - 1
	to := max(0, min(from+delta, len(d.items)-1))
	if to == from {
		return d
	}
	out := slices.Clone(d.items)
	item := out[from]
	out = slices.Delete(out, from, from+1)
	out = slices.Insert(out, to, item)
	return &Document{items: out, selection: to + 1}
}

// ReplaceSelected replaces the selected item.
func (d *Document) ReplaceSelected(item Item) *Document {
	invariant.Precondition(d.selection > 0, "no item is selected")
	invariant.NotNil(item, "item")
	out := slices.Clone(d.items)
	out[d.selection-1] = item
	return &Document{items: out, selection: d.selection}
}
