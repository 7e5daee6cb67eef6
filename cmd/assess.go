package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/theopenlane/probity/config"
	"github.com/theopenlane/probity/internal/types"
)

// assessCmd runs a single vendor assessment and prints the result as JSON
var assessCmd = &cobra.Command{
	Use:   "assess <domain>",
	Short: "run a one-shot vendor risk assessment",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		err := assess(cmd.Context(), args[0])
		cobra.CheckErr(err)
	},
}

// init registers the assess command and its flags on the root command
func init() {
	rootCmd.AddCommand(assessCmd)
	assessCmd.PersistentFlags().String("config", "./config/.config.yaml", "config file location")
	assessCmd.Flags().String("data-sensitivity", "", "sensitivity of data shared with the vendor (low, medium, high, critical)")
	assessCmd.Flags().String("access-level", "", "vendor access to internal systems (read_only, limited, full, admin)")
	assessCmd.Flags().String("criticality", "", "business criticality of the vendor (low, medium, high, critical)")
	assessCmd.Flags().StringSlice("regulation", nil, "applicable regulations (GDPR, HIPAA, ...)")
	assessCmd.Flags().StringSlice("location", nil, "vendor operating locations (US, EU, ...)")
}

// assess runs the pipeline once and writes the result to stdout
func assess(ctx context.Context, vendorDomain string) error {
	cfgPath := k.String("config")

	cfg, err := config.Load(&cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	engine, err := setupAssessment(ctx, cfg)
	if err != nil {
		return fmt.Errorf("setting up assessment: %w", err)
	}

	criteria := types.RiskCriteria{
		DataSensitivity:     k.String("data-sensitivity"),
		VendorAccessLevel:   k.String("access-level"),
		BusinessCriticality: k.String("criticality"),
		RegulatoryExposure:  k.Strings("regulation"),
		GeographicLocations: k.Strings("location"),
	}

	result, err := engine.AssessVendor(ctx, vendorDomain, criteria)
	if err != nil {
		return fmt.Errorf("assessing %s: %w", vendorDomain, err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	return encoder.Encode(result)
}
