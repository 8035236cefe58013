package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"hydrodash/internal/app"
)

func newStationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stations",
		Short: "List the configured station directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			a, err := app.New(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tNAME\tSTATION\tLAT\tLON\tFORECAST")
			for _, st := range a.Directory.All() {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%.4f\t%.4f\t%v\n",
					st.Key, st.Name, st.StationID, st.Latitude, st.Longitude, st.HasForecast())
			}
			return tw.Flush()
		},
	}
}
