package channel

import "errors"

// ErrTableFull is returned by Table.Add when a ninth channel would be
// declared; a frame supports at most MaxChannels (8) channels.
var ErrTableFull = errors.New("channel: table already holds the maximum of 8 channels")

// ErrDuplicateName is returned by Table.Add for a name already declared in
// the table.
var ErrDuplicateName = errors.New("channel: duplicate channel name")

const maxChannels = 8

// Table is an append-only, order-preserving name <-> bit-position mapping.
// Declaration order is the bit order: the first channel added occupies bit
// 0, and that order is fixed for the table's lifetime.
type Table struct {
	names []string
	index map[string]int
}

// NewTable returns an empty channel table.
func NewTable() *Table {
	return &Table{index: make(map[string]int, maxChannels)}
}

// Add declares a new channel and returns its bit position. Declaring more
// than MaxChannels channels, or the same name twice, is an error.
func (t *Table) Add(name string) (bit int, err error) {
	if _, exists := t.index[name]; exists {
		return 0, ErrDuplicateName
	}
	if len(t.names) >= maxChannels {
		return 0, ErrTableFull
	}
	bit = len(t.names)
	t.names = append(t.names, name)
	t.index[name] = bit
	return bit, nil
}

// Len returns the number of declared channels.
func (t *Table) Len() int {
	return len(t.names)
}

// Name returns the channel name at bit position bit.
func (t *Table) Name(bit int) string {
	return t.names[bit]
}

// Names returns the channel names in declaration (bit) order.
func (t *Table) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Bit returns the bit position of name, or ok=false if name was never
// declared.
func (t *Table) Bit(name string) (bit int, ok bool) {
	bit, ok = t.index[name]
	return
}
