// Package container reads and patches the multi-segment storyboard
// container: a fixed header, a meta table mapping segment ids to absolute
// offsets, and the segments themselves.
package container

import (
	"encoding/binary"
	"os"
	"path/filepath"

	"github.com/yumesaki/stbtool/errz"
)

// Fixed header field positions, all little-endian int32.
const (
	scriptStartField = 4
	headerSizeField  = 8
	metaStartField   = 12
	metaCountField   = 16

	headerMinSize = 20
	metaEntrySize = 8
)

// SubHeaderSize is the fixed per-segment sub-header preceding a segment's
// bytecode. Its contents are opaque to this package.
const SubHeaderSize = 0x38

// MetaEntry is one meta-table pair: a segment id and its absolute offset.
type MetaEntry struct {
	ID     int32 `json:"id"`
	Offset int32 `json:"offset"`
}

// Container is a fully buffered storyboard file. The byte slice is
// mutated in place by Inject and persisted with WriteFile.
type Container struct {
	data        []byte
	ScriptStart int32
	HeaderSize  int32
	MetaStart   int32
	Entries     []MetaEntry
}

// Load reads and parses the container at path.
func Load(path string) (*Container, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse validates the header and meta table of data. The slice is
// retained; callers must not modify it afterwards.
func Parse(data []byte) (*Container, error) {
	if len(data) < headerMinSize {
		return nil, errz.New(errz.ErrCorruptStream, "container too short (%d bytes)", len(data))
	}
	c := &Container{
		data:        data,
		ScriptStart: readInt32(data, scriptStartField),
		HeaderSize:  readInt32(data, headerSizeField),
		MetaStart:   readInt32(data, metaStartField),
	}
	count := readInt32(data, metaCountField)
	if count < 0 || c.MetaStart < 0 || int(c.MetaStart)+int(count)*metaEntrySize > len(data) {
		return nil, errz.New(errz.ErrCorruptStream, "meta table out of bounds (start 0x%X, count %d)", c.MetaStart, count)
	}
	c.Entries = make([]MetaEntry, count)
	prev := int32(-1)
	for i := range c.Entries {
		base := int(c.MetaStart) + i*metaEntrySize
		c.Entries[i] = MetaEntry{
			ID:     readInt32(data, base),
			Offset: readInt32(data, base+4),
		}
		off := c.Entries[i].Offset
		if off <= prev || int(off) > len(data) {
			return nil, errz.New(errz.ErrCorruptStream, "meta offsets not increasing at entry %d (0x%X)", i, off)
		}
		prev = off
	}
	return c, nil
}

// Bytes returns the container's backing bytes.
func (c *Container) Bytes() []byte {
	return c.data
}

// SegmentIndex returns the meta-table index of the segment starting at
// offset.
func (c *Container) SegmentIndex(offset int32) (int, error) {
	for i, e := range c.Entries {
		if e.Offset == offset {
			return i, nil
		}
	}
	return 0, errz.New(errz.ErrSegmentNotFound, "offset 0x%X not in meta table", offset)
}

// SegmentEnd returns the exclusive end of segment i: the next segment's
// offset, or the end of the file for the last segment.
func (c *Container) SegmentEnd(i int) int32 {
	if i+1 < len(c.Entries) {
		return c.Entries[i+1].Offset
	}
	return int32(len(c.data))
}

// SegmentInfo summarizes one segment for inspection output.
type SegmentInfo struct {
	ID       int32 `json:"id"`
	Offset   int32 `json:"offset"`
	Length   int32 `json:"length"`
	IsScript bool  `json:"is_script"`
}

// Info is a human-oriented summary of the container structure.
type Info struct {
	Path        string        `json:"path,omitempty"`
	Size        int           `json:"size"`
	ScriptStart int32         `json:"script_start"`
	HeaderSize  int32         `json:"header_size"`
	MetaStart   int32         `json:"meta_start"`
	Segments    []SegmentInfo `json:"segments"`
}

// Summarize builds an Info for the container.
func (c *Container) Summarize() *Info {
	info := &Info{
		Size:        len(c.data),
		ScriptStart: c.ScriptStart,
		HeaderSize:  c.HeaderSize,
		MetaStart:   c.MetaStart,
	}
	for i, e := range c.Entries {
		info.Segments = append(info.Segments, SegmentInfo{
			ID:       e.ID,
			Offset:   e.Offset,
			Length:   c.SegmentEnd(i) - e.Offset,
			IsScript: e.Offset == c.ScriptStart,
		})
	}
	return info
}

// WriteFile persists the container as a single atomic rewrite: the bytes
// are written to a temporary file in the target directory and renamed
// over path.
func (c *Container) WriteFile(path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(c.data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}

func readInt32(b []byte, off int) int32 {
	return int32(binary.LittleEndian.Uint32(b[off : off+4]))
}

func writeInt32(b []byte, off int, v int32) {
	binary.LittleEndian.PutUint32(b[off:off+4], uint32(v))
}
