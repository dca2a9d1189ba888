package main

import (
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/xonecas/symtab/internal/output"
)

func newDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff OLD NEW",
		Short: "Show a unified diff between two serialized symbol tables",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := output.Diff(args[0], args[1])
			if err != nil {
				return err
			}
			if d == "" {
				log.Info().Str("old", args[0]).Str("new", args[1]).Msg("symbol tables are identical")
				return nil
			}
			_, err = io.WriteString(cmd.OutOrStdout(), d)
			return err
		},
	}
}
