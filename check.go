package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tonimelisma/netstate-go/internal/netstate"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Probe connectivity once and print the result",
		Long: `Run a single reachability probe against the configured targets and print
the classification. Does not require a running daemon.

Examples:
  netstate check
  netstate check --json`,
		Args: cobra.NoArgs,
		RunE: runCheck,
	}
}

// checkOutput is the JSON shape of the check command.
type checkOutput struct {
	Classification string `json:"classification"`
	Online         bool   `json:"online"`
}

func runCheck(cmd *cobra.Command, _ []string) error {
	rt := cfgHolder.Runtime()

	p := probeFromRuntime(rt, appLogger)
	result := p.Classify(cmd.Context())

	// Any reachability, including local-only, counts as online.
	online := result == netstate.ReachableRemote || result == netstate.ReachableLocal

	if flagJSON {
		return json.NewEncoder(os.Stdout).Encode(checkOutput{
			Classification: result.String(),
			Online:         online,
		})
	}

	fmt.Printf("classification: %s\n", result)
	fmt.Printf("online:         %v\n", online)

	return nil
}
