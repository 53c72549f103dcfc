package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yumesaki/stbtool/container"
)

var infoCmd = &cobra.Command{
	Use:   "info <file.stb>",
	Short: "Print a container's header and segment table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := container.Load(args[0])
		if err != nil {
			return err
		}
		info := c.Summarize()
		info.Path = args[0]

		format, _ := cmd.Flags().GetString("output")
		if format == "json" {
			out, err := formatJSON(info)
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		}

		fmt.Printf("%s: %d bytes, %d segments\n", info.Path, info.Size, len(info.Segments))
		fmt.Printf("  script start 0x%X, header size 0x%X, meta table 0x%X\n",
			info.ScriptStart, info.HeaderSize, info.MetaStart)
		for _, seg := range info.Segments {
			marker := " "
			if seg.IsScript {
				marker = green("*")
			}
			fmt.Printf("  %s id %4d  offset 0x%08X  length %d\n", marker, seg.ID, seg.Offset, seg.Length)
		}
		return nil
	},
}

func init() {
	infoCmd.Flags().StringP("output", "o", "text", "Output format (json, text)")
	rootCmd.AddCommand(infoCmd)
}
