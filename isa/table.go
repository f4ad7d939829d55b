package isa

import (
	"fmt"
)

// Table is a finished decode table. Ordinal n names Records()[n-1], and
// ordinal zero is reserved for opcodes that no instruction matches.
type Table struct {
	records []*Record
	decode  [1 << Width]uint16
}

// Records returns the instructions in ordinal order.
func (t *Table) Records() []*Record {
	ret := make([]*Record, len(t.records))
	copy(ret, t.records)
	return ret
}

func (t *Table) Len() int {
	return len(t.records)
}

// Decode returns a copy of the decode table.
func (t *Table) Decode() [1 << Width]uint16 {
	return t.decode
}

// Lookup returns the instruction matching the raw opcode v along with its
// ordinal, or nil and zero if nothing matches.
func (t *Table) Lookup(v uint16) (*Record, uint16) {
	ordinal := t.decode[v]
	if ordinal == 0 {
		return nil, 0
	}
	return t.records[ordinal-1], ordinal
}

// Builder assembles a Table one record at a time. Each Builder owns its
// table outright, so independent descriptions can be built concurrently with
// separate Builders.
type Builder struct {
	records []*Record
	decode  [1 << Width]uint16
}

func NewBuilder() *Builder {
	return &Builder{}
}

// Add gives rec the next ordinal and claims every opcode it matches. It
// fails without changing the table if any of those opcodes already belongs
// to an earlier record, or if the table is full.
func (b *Builder) Add(rec *Record) error {
	if len(b.records) >= MaxRecords {
		return fmt.Errorf("can't add %s: %w", rec.Pattern, ErrTooManyRecords)
	}
	if rec.Encoding&^rec.Mask != 0 {
		// Can't happen for records from Parse, but hand-made ones could
		// claim bits they don't care about and so match nothing.
		return fmt.Errorf("%s: encoding %s has bits outside mask %s", rec.Pattern, rec.Encoding, rec.Mask)
	}

	var collision error
	eachMatch(rec.Encoding, rec.Mask, func(v uint16) bool {
		if prev := b.decode[v]; prev != 0 {
			collision = &CollisionError{
				Opcode:   v,
				Existing: b.records[prev-1],
				Incoming: rec,
			}
			return false
		}
		return true
	})
	if collision != nil {
		return collision
	}

	b.records = append(b.records, rec)
	ordinal := uint16(len(b.records))
	eachMatch(rec.Encoding, rec.Mask, func(v uint16) bool {
		b.decode[v] = ordinal
		return true
	})
	return nil
}

// Build returns the finished table. The Builder can still be added to
// afterwards without affecting tables it has already returned.
func (b *Builder) Build() (*Table, error) {
	if len(b.records) > MaxRecords {
		return nil, ErrTooManyRecords
	}
	t := &Table{
		records: make([]*Record, len(b.records)),
		decode:  b.decode,
	}
	copy(t.records, b.records)
	return t, nil
}

// BuildTable adds every record, in order, to a fresh Builder.
func BuildTable(records []*Record) (*Table, error) {
	b := NewBuilder()
	for _, rec := range records {
		if err := b.Add(rec); err != nil {
			return nil, err
		}
	}
	return b.Build()
}

// eachMatch calls fn, in increasing order, for every opcode v with
// v&mask == encoding, stopping early if fn returns false. It walks the
// subsets of the free (unmasked) bits instead of the whole opcode space.
func eachMatch(encoding, mask bits16, fn func(v uint16) bool) {
	free := ^mask
	sub := bits16(0)
	for {
		if !fn(uint16(encoding | sub)) {
			return
		}
		sub = (sub - free) & free
		if sub == 0 {
			return
		}
	}
}
