package container

import (
	"github.com/yumesaki/stbtool/errz"
	"github.com/yumesaki/stbtool/op"
)

// Align4 rounds n up to the next multiple of 4. Every bytecode+pool
// region is aligned before the next segment begins.
func Align4(n int) int {
	return (n + 3) &^ 3
}

// Inject replaces the script segment (the one starting at ScriptStart)
// with buf, a freshly encoded bytecode+pool region. If the aligned size
// differs from the old region, every trailing segment's meta offset and
// every absolute string reference inside those segments is shifted by the
// delta before the bytes move, so the scan never reads mutated data.
func (c *Container) Inject(buf []byte) error {
	idx, err := c.SegmentIndex(c.ScriptStart)
	if err != nil {
		return err
	}
	start := int(c.Entries[idx].Offset) + SubHeaderSize
	end := int(c.SegmentEnd(idx))
	if start > end || end > len(c.data) {
		return errz.New(errz.ErrCorruptStream, "segment bounds 0x%X..0x%X exceed file", start, end)
	}

	newLen := Align4(len(buf))
	delta := newLen - (end - start)

	if delta == 0 {
		copy(c.data[start:end], buf)
		zeroFill(c.data[start+len(buf) : end])
		return nil
	}

	// Shift absolute string references in every trailing segment while
	// the bytes are still at their old positions.
	for j := idx + 1; j < len(c.Entries); j++ {
		if err := c.shiftStringRefs(j, int32(delta)); err != nil {
			return err
		}
	}

	// Splice: head, the new aligned region, then the unmodified tail.
	head := c.data[:start]
	tail := c.data[end:]
	patched := make([]byte, 0, start+newLen+len(tail))
	patched = append(patched, head...)
	patched = append(patched, buf...)
	patched = append(patched, make([]byte, newLen-len(buf))...)
	patched = append(patched, tail...)
	c.data = patched

	// Second pass over the meta table: offsets were captured before any
	// bytes moved, so the shifted values are written only now.
	for j := idx + 1; j < len(c.Entries); j++ {
		c.Entries[j].Offset += int32(delta)
		writeInt32(c.data, int(c.MetaStart)+j*metaEntrySize+4, c.Entries[j].Offset)
	}
	return nil
}

// shiftStringRefs walks segment j's bytecode record by record, rewriting
// each string-push value by delta. The segment's first Exit record marks
// the scan boundary.
func (c *Container) shiftStringRefs(j int, delta int32) error {
	pos := int(c.Entries[j].Offset) + SubHeaderSize
	limit := int(c.SegmentEnd(j))
	for {
		if pos+op.RecordSize > limit {
			return errz.NewAt(errz.ErrCorruptStream, int64(pos), "segment %d bytecode has no exit record", c.Entries[j].ID)
		}
		rec := op.DecodeRecord(c.data[pos : pos+op.RecordSize])
		if rec.Op == op.Exit {
			return nil
		}
		if rec.Op == op.Push && rec.Sub == op.PushString {
			writeInt32(c.data, pos+8, rec.Value+delta)
		}
		pos += op.RecordSize
	}
}

func zeroFill(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
