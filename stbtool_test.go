package stbtool

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yumesaki/stbtool/container"
	"github.com/yumesaki/stbtool/encoder"
	"github.com/yumesaki/stbtool/errz"
	"github.com/yumesaki/stbtool/op"
)

var scriptLines = []string{
	"time = 0;",
	`sub005("テスト", 1.0000);`,
	"macro(0x0001);",
	"exit(0);",
}

func putInt32(b []byte, off int, v int32) {
	binary.LittleEndian.PutUint32(b[off:off+4], uint32(v))
}

func record(code op.Code, sub op.SubCode, value int32) []byte {
	var b [op.RecordSize]byte
	op.Record{Op: code, Sub: sub, Value: value}.Encode(b[:])
	return b[:]
}

func exitRegion(n int32) []byte {
	return bytes.Join([][]byte{
		record(op.Push, op.PushInt, n),
		record(op.Exit, 0, 0),
		record(op.End, 0, 0),
	}, nil)
}

// writeTestContainer assembles a three-segment container whose middle
// segment holds the encoded form of lines, and writes it to path.
func writeTestContainer(t *testing.T, path string, lines []string) {
	t.Helper()

	seg0 := exitRegion(0)
	seg2 := exitRegion(2)

	metaStart := int32(0x20)
	firstSeg := metaStart + 3*8
	scriptOff := firstSeg + container.SubHeaderSize + int32(len(seg0))
	origin := scriptOff + container.SubHeaderSize

	script, err := encoder.New().Encode(lines, origin)
	require.NoError(t, err)
	scriptLen := int32(container.Align4(len(script)))
	trailingOff := origin + scriptLen

	size := trailingOff + container.SubHeaderSize + int32(len(seg2))
	data := make([]byte, size)
	putInt32(data, 4, scriptOff)
	putInt32(data, 8, metaStart)
	putInt32(data, 12, metaStart)
	putInt32(data, 16, 3)
	for i, off := range []int32{firstSeg, scriptOff, trailingOff} {
		putInt32(data, int(metaStart)+i*8, int32(i+1))
		putInt32(data, int(metaStart)+i*8+4, off)
	}
	copy(data[firstSeg+container.SubHeaderSize:], seg0)
	copy(data[origin:], script)
	copy(data[trailingOff+container.SubHeaderSize:], seg2)

	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func TestDecodeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.stb")
	writeTestContainer(t, path, scriptLines)

	out, err := DecodeFile(path)
	require.NoError(t, err)
	require.Equal(t, path+".txt", out)

	text, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, strings.Join(scriptLines, "\n")+"\n", string(text))
}

func TestDecode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.stb")
	writeTestContainer(t, path, scriptLines)

	lines, err := Decode(path)
	require.NoError(t, err)
	require.Equal(t, scriptLines, lines)
}

func TestEncodeFileZeroDeltaIsByteIdentical(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.stb")
	writeTestContainer(t, path, scriptLines)
	orig, err := os.ReadFile(path)
	require.NoError(t, err)

	out, err := DecodeFile(path)
	require.NoError(t, err)
	companion, err := EncodeFile(out)
	require.NoError(t, err)
	require.Equal(t, path, companion)

	patched, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, orig, patched)
}

func TestEncodeFileEditGrowsContainer(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.stb")
	writeTestContainer(t, path, scriptLines)
	orig, err := container.Load(path)
	require.NoError(t, err)
	origTrailing := orig.Entries[2].Offset
	origSize := len(orig.Bytes())

	out, err := DecodeFile(path)
	require.NoError(t, err)

	edited := append([]string(nil), scriptLines[:3]...)
	edited = append(edited, "macro(0x0002);", "exit(0);")
	require.NoError(t, os.WriteFile(out, []byte(strings.Join(edited, "\n")+"\n"), 0o644))

	_, err = EncodeFile(out)
	require.NoError(t, err)

	// One macro adds two records: a delta of 24 bytes.
	patched, err := container.Load(path)
	require.NoError(t, err)
	require.Equal(t, origSize+24, len(patched.Bytes()))
	require.Equal(t, origTrailing+24, patched.Entries[2].Offset)

	lines, err := Decode(path)
	require.NoError(t, err)
	require.Equal(t, edited, lines)
}

func TestEncodeFileCompanionMissing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.stb.txt")
	require.NoError(t, os.WriteFile(path, []byte("exit(0);\n"), 0o644))
	_, err := EncodeFile(path)
	require.True(t, errz.IsKind(err, errz.ErrCompanionMissing))
}

func TestEncodeFileWrongExtension(t *testing.T) {
	_, err := EncodeFile("scene.stb")
	require.Error(t, err)
}

func TestConvertPathSingleFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.stb")
	writeTestContainer(t, path, scriptLines)

	result, err := ConvertPath(path)
	require.NoError(t, err)
	require.Equal(t, map[string]string{path: path + ".txt"}, result.Converted)
	require.Empty(t, result.Failed)
}

func TestConvertPathDirectoryContinuesPastFailures(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "a_broken.stb")
	good := filepath.Join(dir, "b_scene.stb")
	require.NoError(t, os.WriteFile(bad, []byte("not a container"), 0o644))
	writeTestContainer(t, good, scriptLines)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("skip me"), 0o644))

	result, err := ConvertPath(dir)
	require.Error(t, err)
	require.Equal(t, []string{bad}, result.Failed)
	require.Equal(t, good+".txt", result.Converted[good])
}

func TestSplitLines(t *testing.T) {
	require.Equal(t, []string{"time = 1;", "exit(0);"}, splitLines("time = 1;\r\nexit(0);\r\n"))
	require.Equal(t, []string{"exit(0);"}, splitLines("exit(0);"))
	require.Empty(t, splitLines("\n\n"))
}
