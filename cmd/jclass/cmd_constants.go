package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/dhamidi/jclass/format"
)

func newConstantsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "constants <file.class>",
		Short: "List the constant pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cf, err := a.parseFile(args[0])
			if err != nil {
				return err
			}
			return format.WriteConstants(os.Stdout, cf.ConstantPool)
		},
	}
}
