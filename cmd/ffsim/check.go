package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/EPCCed/ffs-sub000/internal/config"
)

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <config-file>",
		Short: "Validate an FFS configuration without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := config.Load(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("ok: %d interfaces, algorithm=%s, nproxy=%d\n",
				len(params.Interfaces), params.Algorithm, params.NProxy)
			return nil
		},
	}
}
