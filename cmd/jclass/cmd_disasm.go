package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/dhamidi/jclass/classfile"
	"github.com/dhamidi/jclass/format"
)

func newDisasmCmd(a *app) *cobra.Command {
	var method string

	cmd := &cobra.Command{
		Use:   "disasm <file.class>",
		Short: "List the decoded instructions of each method",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cf, err := classfile.ParseFile(args[0], a.fullParseOptions()...)
			if err != nil {
				return err
			}
			return format.Disassemble(os.Stdout, cf, method)
		},
	}

	cmd.Flags().StringVarP(&method, "method", "m", "", "only this method")

	return cmd
}
