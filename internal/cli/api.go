package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) newAPICmd() *cobra.Command {
	var digits bool
	cmd := &cobra.Command{
		Use:   "api <file>",
		Short: "Print the API well number of a LAS file",
		Long: `API reads the UWI and API mnemonics of the Well section and prints
the well's API number as SS-CCC-UUUUU[-DD[-EE]].`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.openFile(args[0])
			if err != nil {
				return err
			}
			api, ok := f.API()
			if !ok {
				return fmt.Errorf("%s: no API number in the Well section", args[0])
			}
			if digits {
				fmt.Fprintln(out(cmd), api.Digits)
			} else {
				fmt.Fprintln(out(cmd), api.Formatted())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&digits, "digits", false, "print digits only")
	return cmd
}
