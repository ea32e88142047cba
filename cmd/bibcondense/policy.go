package main

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(policyCmd)
}

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Show the field policy of each entry type",
	Long: `Show the field policy of each entry type.

For every known entry type, lists the fields kept with --select_fields and
the field holding the venue name that gets shortened. Policies set in the
config file are included.

Examples:
  bibcondense policy
  bibcondense policy --human
  bibcondense policy --config bibcondense.yml`,
	Args: cobra.NoArgs,
	RunE: runPolicy,
}

func runPolicy(cmd *cobra.Command, args []string) error {
	policies, err := listPolicies()
	if err != nil {
		return err
	}

	if humanOutput {
		printPoliciesHuman(policies)
		return nil
	}
	return outputJSON(policies)
}

// listPolicies returns the effective policies sorted by entry type.
func listPolicies() ([]PolicyResponse, error) {
	registry, err := cfg.Registry()
	if err != nil {
		return nil, err
	}

	types := registry.Types()
	policies := make([]PolicyResponse, 0, len(types))
	for _, t := range types {
		p, _ := registry.Lookup(string(t))
		policies = append(policies, PolicyResponse{
			Type:     string(t),
			Required: p.Required,
			Venue:    p.Venue,
		})
	}
	return policies, nil
}
