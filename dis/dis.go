// Package dis disassembles raw method record streams into a readable
// listing. It operates below the decoder: no stack evaluation, one row
// per 12-byte record, so it stays useful on streams the decoder rejects.
package dis

import (
	"fmt"
	"io"
	"strings"

	"github.com/yumesaki/stbtool/errz"
	"github.com/yumesaki/stbtool/op"
)

// Instruction is one decoded record with its byte offset into the stream.
type Instruction struct {
	Offset int
	Record op.Record
}

// Disassemble splits data into records, stopping after the terminating
// sentinel. Data shorter than one record, or missing the sentinel, is
// reported as corrupt.
func Disassemble(data []byte) ([]Instruction, error) {
	var out []Instruction
	for pos := 0; ; pos += op.RecordSize {
		if pos+op.RecordSize > len(data) {
			return nil, errz.NewAt(errz.ErrCorruptStream, int64(pos),
				"record stream ends without a sentinel")
		}
		rec := op.DecodeRecord(data[pos : pos+op.RecordSize])
		out = append(out, Instruction{Offset: pos, Record: rec})
		if rec.IsSentinel() {
			return out, nil
		}
	}
}

// Print writes instructions as an aligned table.
func Print(instructions []Instruction, w io.Writer) {
	rows := make([][3]string, len(instructions))
	widths := [3]int{len("OFFSET"), len("OPCODE"), len("OPERANDS")}
	for i, inst := range instructions {
		rows[i] = [3]string{
			fmt.Sprintf("%d", inst.Offset),
			inst.Record.Op.String(),
			operands(inst.Record),
		}
		for c, cell := range rows[i] {
			if len(cell) > widths[c] {
				widths[c] = len(cell)
			}
		}
	}
	rule := fmt.Sprintf("+-%s-+-%s-+-%s-+\n",
		strings.Repeat("-", widths[0]),
		strings.Repeat("-", widths[1]),
		strings.Repeat("-", widths[2]))
	format := fmt.Sprintf("| %%%ds | %%-%ds | %%-%ds |\n", widths[0], widths[1], widths[2])
	fmt.Fprint(w, rule)
	fmt.Fprintf(w, format, "OFFSET", "OPCODE", "OPERANDS")
	fmt.Fprint(w, rule)
	for _, row := range rows {
		fmt.Fprintf(w, format, row[0], row[1], row[2])
	}
	fmt.Fprint(w, rule)
}

func operands(rec op.Record) string {
	switch rec.Op {
	case op.Push:
		return fmt.Sprintf("%s %d", rec.Sub, rec.Value)
	case op.PushWord:
		return fmt.Sprintf("0x%04X", uint16(rec.Value))
	case op.Command, op.CallSub, op.Exit:
		return fmt.Sprintf("%d", rec.Value)
	default:
		return ""
	}
}
