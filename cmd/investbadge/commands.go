package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/bobmcallan/investbadge/internal/common"
	"github.com/bobmcallan/investbadge/internal/models"
	"github.com/bobmcallan/investbadge/internal/services/dashboard"
	"github.com/bobmcallan/investbadge/internal/services/reputation"
)

// allocationFlags binds the four bucket percentages to a command.
type allocationFlags struct {
	alloc  models.PortfolioAllocation
	asJSON bool
}

func (f *allocationFlags) register(cmd *cobra.Command) {
	def := models.DefaultAllocation()
	cmd.Flags().Float64Var(&f.alloc.Stablecoins, "stablecoins", def.Stablecoins, "stablecoin percentage (0-100)")
	cmd.Flags().Float64Var(&f.alloc.Bitcoin, "bitcoin", def.Bitcoin, "bitcoin percentage (0-100)")
	cmd.Flags().Float64Var(&f.alloc.Altcoins, "altcoins", def.Altcoins, "altcoin percentage (0-100)")
	cmd.Flags().Float64Var(&f.alloc.DeFi, "defi", def.DeFi, "DeFi percentage (0-100)")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "print JSON")
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "investbadge",
		Short:         "Score crypto portfolio allocations",
		Version:       common.GetFullVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newClassifyCmd(), newScoreCmd(), newBadgeCmd())
	return root
}

func newClassifyCmd() *cobra.Command {
	var f allocationFlags
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Print the investor type for an allocation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := reputation.Classify(f.alloc)
			if err != nil {
				return err
			}
			if f.asJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]interface{}{"type": t, "risk_score": f.alloc.RiskScore()})
			}
			fmt.Fprintln(cmd.OutOrStdout(), t)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newScoreCmd() *cobra.Command {
	var f allocationFlags
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Print the reputation score breakdown for an allocation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := reputation.Assess(f.alloc)
			if err != nil {
				return err
			}
			if f.asJSON {
				return writeJSON(cmd.OutOrStdout(), a)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Score:           %d/100\n", a.Score)
			fmt.Fprintf(out, "Type:            %s\n", a.Type)
			fmt.Fprintf(out, "Risk:            %.1f%% (%s)\n", a.RiskScore, a.RiskLevel)
			fmt.Fprintf(out, "Diversification: +%.2f\n", a.DiversificationBonus)
			fmt.Fprintf(out, "Risk penalty:    -%.2f\n", a.RiskPenalty)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newBadgeCmd() *cobra.Command {
	var (
		f       allocationFlags
		id      string
		outPath string
	)
	cmd := &cobra.Command{
		Use:   "badge",
		Short: "Print badge metadata for an allocation, optionally rendering the image",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := reputation.Assess(f.alloc)
			if err != nil {
				return err
			}
			profile := &models.InvestorProfile{
				ID:          id,
				Score:       a.Score,
				Type:        a.Type,
				NFTID:       models.NFTLabel(id),
				LastUpdated: time.Now().UTC(),
			}

			if outPath != "" {
				png, err := dashboard.RenderBadgeImage(profile)
				if err != nil {
					return err
				}
				if err := os.WriteFile(outPath, png, 0o644); err != nil {
					return fmt.Errorf("failed to write badge image: %w", err)
				}
			}

			meta := dashboard.NewService("", common.NewSilentLogger()).Metadata(profile)
			if outPath != "" {
				meta.Image = outPath
			}
			if f.asJSON {
				return writeJSON(cmd.OutOrStdout(), meta)
			}
			style := dashboard.BadgeStyleFor(profile)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n", meta.Name)
			fmt.Fprintf(out, "  %s %s, score %d\n", style.Icon, style.TypeLabel, a.Score)
			for _, attr := range meta.Attributes {
				fmt.Fprintf(out, "  %-16s %v\n", attr.TraitType+":", attr.Value)
			}
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&id, "id", "1", "badge token id")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the badge PNG to this path")
	return cmd
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
