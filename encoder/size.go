package encoder

import "github.com/yumesaki/stbtool/op"

// Record counts per instruction form. A sub-call adds its argument pushes
// to the descriptor and call records.
const (
	timeRecords  = 3
	macroRecords = 2
	exitRecords  = 3
	subBase      = 4
)

// measureRecords returns the byte size of the record region. String
// record values depend on this total, which is why sizing precedes
// emission.
func measureRecords(insts []instruction) int {
	records := 0
	for _, inst := range insts {
		switch inst.kind {
		case instTime:
			records += timeRecords
		case instMacro:
			records += macroRecords
		case instExit:
			records += exitRecords
		case instSub:
			records += subBase
			for _, arg := range inst.args {
				records += arg.recordCount()
			}
		}
	}
	return records * op.RecordSize
}

// measurePool returns the byte size of the string pool: each referenced
// string in encoded form plus its NUL terminator.
func measurePool(insts []instruction) int {
	size := 0
	for _, inst := range insts {
		for _, arg := range inst.args {
			if arg.kind == litString {
				size += len(arg.encoded) + 1
			}
		}
	}
	return size
}
