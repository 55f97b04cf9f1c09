package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/yungbote/voterguide-backend/internal/seed"
	"github.com/yungbote/voterguide-backend/internal/services"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load sample jurisdictions, precincts, elections and ballots",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := getApp(cmd)
		f, err := seed.Default()
		if err != nil {
			return err
		}
		res, err := seed.NewSeeder(a.DB, a.Log).Seed(cmd.Context(), f)
		if err != nil {
			return err
		}
		return printJSON(cmd, res)
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Collect ballot data for stored jurisdictions",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := getApp(cmd)
		ids, _ := cmd.Flags().GetStringSlice("jurisdiction")
		asJSON, _ := cmd.Flags().GetBool("json")

		report, err := a.Services.BallotData.RefreshAll(cmd.Context(), ids)
		if err != nil {
			return err
		}
		if asJSON {
			return printJSON(cmd, report)
		}
		writeRefreshReport(cmd.OutOrStdout(), report)
		return nil
	},
}

// writeRefreshReport prints one line per jurisdiction and a totals line.
// No-data entries carry their hint in Error, so they are matched first.
func writeRefreshReport(out io.Writer, report *services.BulkReport) {
	for _, e := range report.Entries {
		switch {
		case e.NoData:
			fmt.Fprintf(out, "%-24s no data  %s\n", e.JurisdictionID, e.Error)
		case e.Error != "":
			fmt.Fprintf(out, "%-24s failed   %s\n", e.JurisdictionID, e.Error)
		default:
			fmt.Fprintf(out, "%-24s %-16s written=%d samples_deleted=%d\n", e.JurisdictionID, e.Source, e.Written, e.SamplesDeleted)
		}
	}
	fmt.Fprintf(out, "succeeded=%d no_data=%d failed=%d\n", report.Succeeded, report.NoData, report.Failed)
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Collect ballot data for one jurisdiction and print the result",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := getApp(cmd)
		jurisdiction, _ := cmd.Flags().GetString("jurisdiction")
		address, _ := cmd.Flags().GetString("address")
		election, _ := cmd.Flags().GetString("election")

		res, err := a.Services.BallotData.Collect(cmd.Context(), services.CollectRequest{
			JurisdictionID: jurisdiction,
			Address:        address,
			ElectionID:     election,
		})
		if err != nil {
			return err
		}
		return printJSON(cmd, res)
	},
}

func init() {
	refreshCmd.Flags().StringSlice("jurisdiction", nil, "Jurisdiction ids to refresh (default: all)")
	refreshCmd.Flags().Bool("json", false, "Output the report as JSON")

	fetchCmd.Flags().String("jurisdiction", "", "Jurisdiction id")
	fetchCmd.Flags().String("address", "", "Voter address, enables Google Civic")
	fetchCmd.Flags().String("election", "", "Election id to store under, also passed to providers")
	_ = fetchCmd.MarkFlagRequired("jurisdiction")
}
