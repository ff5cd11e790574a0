package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/OFFIS-RIT/claimnet/pkg/claims"
	"github.com/OFFIS-RIT/claimnet/pkg/graph"
	csvloader "github.com/OFFIS-RIT/claimnet/pkg/loader/csv"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "claimgraph",
		Short:        "Build claim graphs and score facility collusion risk from a claims CSV",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newScoreCmd())
	rootCmd.AddCommand(newGraphCmd())
	rootCmd.AddCommand(newCommunitiesCmd())
	return rootCmd
}

func newScoreCmd() *cobra.Command {
	var (
		file   string
		faskes string
	)

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score the collusion risk of one facility against the whole file",
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadGraph(file)
			if err != nil {
				return err
			}
			score, ok := graph.ScoreFacility(g, faskes)
			if !ok {
				return fmt.Errorf("facility %q not found in %s", faskes, file)
			}
			return writeJSON(cmd.OutOrStdout(), score)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Claims CSV file")
	cmd.Flags().StringVar(&faskes, "faskes", "", "Facility id to score")
	cmd.MarkFlagRequired("file")
	cmd.MarkFlagRequired("faskes")
	return cmd
}

func newGraphCmd() *cobra.Command {
	var (
		file   string
		faskes string
		radius int
		out    string
	)

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Export the neighbourhood of a facility as renderer nodes and edges",
		RunE: func(cmd *cobra.Command, args []string) error {
			if radius < 0 {
				return fmt.Errorf("radius must not be negative, got %d", radius)
			}
			table, err := loadTable(file)
			if err != nil {
				return err
			}
			filtered := table.FilterFacility(faskes)
			if filtered.Len() == 0 {
				return fmt.Errorf("facility %q not found in %s", faskes, file)
			}
			g, err := buildGraph(filtered)
			if err != nil {
				return err
			}

			center := graph.FacilityKey(faskes)
			sub, ok := g.Ego(center, radius)
			if !ok {
				return fmt.Errorf("facility %q not found in %s", faskes, file)
			}

			w := cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("creating output file: %w", err)
				}
				defer f.Close()
				w = f
			}
			return writeJSON(w, graph.Visualize(sub, center))
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Claims CSV file")
	cmd.Flags().StringVar(&faskes, "faskes", "", "Facility id at the centre of the graph")
	cmd.Flags().IntVar(&radius, "radius", graph.DefaultEgoRadius, "Number of hops around the facility")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")
	cmd.MarkFlagRequired("file")
	cmd.MarkFlagRequired("faskes")
	return cmd
}

type communitiesOutput struct {
	Modularity  float64           `json:"modularity"`
	Communities []graph.Community `json:"communities"`
}

func newCommunitiesCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "communities",
		Short: "Partition the claim graph into greedy modularity communities",
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadGraph(file)
			if err != nil {
				return err
			}
			communities := graph.Communities(g)
			return writeJSON(cmd.OutOrStdout(), communitiesOutput{
				Modularity:  graph.Modularity(g, communities),
				Communities: communities,
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Claims CSV file")
	cmd.MarkFlagRequired("file")
	return cmd
}

func loadTable(file string) (*claims.Table, error) {
	content, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading claims file: %w", err)
	}
	table, err := csvloader.ParseTable(content)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", file, err)
	}
	return table, nil
}

func loadGraph(file string) (*graph.Graph, error) {
	table, err := loadTable(file)
	if err != nil {
		return nil, err
	}
	return buildGraph(table)
}

func buildGraph(table *claims.Table) (*graph.Graph, error) {
	rows, err := table.Rows()
	if err != nil {
		return nil, err
	}
	return graph.Build(rows)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
