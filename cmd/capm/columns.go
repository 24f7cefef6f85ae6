package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"capmcli/internal/config"
	"capmcli/internal/dataload"
)

func newColumnsCmd() *cobra.Command {
	var (
		input      string
		sheet      string
		searchRows int
	)

	cmd := &cobra.Command{
		Use:   "columns",
		Short: "List the header cells found in the input file",
		Long:  "columns prints the first non-empty row of each sheet, to help pick --market-col, --stock-col and --riskfree-col.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			found, err := dataload.ListHeaders(input, sheet, searchRows)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(found) == 0 {
				_, err := fmt.Fprintln(out, "No header rows found.")
				return err
			}
			for _, s := range found {
				fmt.Fprintf(out, "Sheet %q, row %d:\n", s.Sheet, s.Row)
				for i, h := range s.Headers {
					if strings.TrimSpace(h) == "" {
						continue
					}
					fmt.Fprintf(out, "  %2d  %s\n", i+1, h)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, flagInput, "i", "", "Input file (.xlsx, .xlsm or .csv)")
	cmd.Flags().StringVar(&sheet, flagSheet, "", "Only list this worksheet")
	cmd.Flags().IntVar(&searchRows, "search-rows", config.DefaultHeaderSearchRows, "Rows to scan for a header")
	_ = cmd.MarkFlagRequired(flagInput)

	return cmd
}
