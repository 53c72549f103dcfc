package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/yumesaki/stbtool/container"
	"github.com/yumesaki/stbtool/dis"
	"github.com/yumesaki/stbtool/errz"
)

var disCmd = &cobra.Command{
	Use:   "dis <file.stb>",
	Short: "Disassemble a container segment's method records",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := container.Load(args[0])
		if err != nil {
			return err
		}

		idx, err := c.SegmentIndex(c.ScriptStart)
		if err != nil {
			return err
		}
		if id, _ := cmd.Flags().GetInt32("segment"); id != 0 {
			idx = -1
			for i, e := range c.Entries {
				if e.ID == id {
					idx = i
					break
				}
			}
			if idx < 0 {
				return errz.New(errz.ErrSegmentNotFound, "no segment with id %d", id)
			}
		}

		start := c.Entries[idx].Offset + container.SubHeaderSize
		data := c.Bytes()[start:c.SegmentEnd(idx)]
		instructions, err := dis.Disassemble(data)
		if err != nil {
			return err
		}
		dis.Print(instructions, os.Stdout)
		return nil
	},
}

func init() {
	disCmd.Flags().Int32("segment", 0, "Segment ID to disassemble (default: the script segment)")
	rootCmd.AddCommand(disCmd)
}
