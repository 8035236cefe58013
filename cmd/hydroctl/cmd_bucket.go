package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"hydrodash/internal/cachebust"
)

func newBucketCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bucket",
		Short: "Print the current cache bucket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			window, _ := cmd.Flags().GetDuration("window")
			b := cachebust.New(window)
			fmt.Fprintf(cmd.OutOrStdout(), "%d\n", b.Bucket())
			fmt.Fprintf(cmd.ErrOrStderr(), "window %v, next bucket in %v\n", b.Window, b.Remaining().Round(time.Second))
			return nil
		},
	}
	cmd.Flags().Duration("window", cachebust.DefaultWindow, "bucket window")
	return cmd
}

func newDecorateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decorate URL",
		Short: "Append the current cache bucket to a URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			window, _ := cmd.Flags().GetDuration("window")
			fmt.Fprintln(cmd.OutOrStdout(), cachebust.New(window).Decorate(args[0]))
			return nil
		},
	}
	cmd.Flags().Duration("window", cachebust.DefaultWindow, "bucket window")
	return cmd
}
