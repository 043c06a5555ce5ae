package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"image-processing-engine/internal/algorithms"
)

type algorithmDoc struct {
	Name        string                     `json:"name"`
	Title       string                     `json:"title"`
	Category    string                     `json:"category"`
	Description string                     `json:"description"`
	Parameters  []algorithms.ParameterInfo `json:"parameters,omitempty"`
}

func NewListCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "registered algorithms and their parameters",
		RunE: func(cmd *cobra.Command, args []string) error {
			categoryOf := make(map[string]string)
			for category, names := range algorithms.GetAlgorithmsByCategory() {
				for _, name := range names {
					categoryOf[name] = category
				}
			}

			docs := lo.FilterMap(algorithms.Names(), func(name string, _ int) (algorithmDoc, bool) {
				a, ok := algorithms.Get(name)
				if !ok {
					return algorithmDoc{}, false
				}
				return algorithmDoc{
					Name:        name,
					Title:       a.GetName(),
					Category:    categoryOf[name],
					Description: a.GetDescription(),
					Parameters:  a.GetParameterInfo(),
				}, true
			})
			sort.SliceStable(docs, func(i, j int) bool { return docs[i].Category < docs[j].Category })

			w := cmd.OutOrStdout()
			switch format, _ := cmd.Flags().GetString("format"); format {
			case "json":
				return writeJSON(w, docs)
			case "text":
				for _, d := range docs {
					fmt.Fprintf(w, "%-10s %-10s %s\n", d.Category, d.Name, d.Description)
					for _, p := range d.Parameters {
						fmt.Fprintf(w, "\t%s (%s, default %v) %s\n", p.Name, p.Type, p.Default, p.Description)
					}
				}
				return nil
			default:
				return fmt.Errorf("unknown format %q", format)
			}
		},
	}
	cmd.PersistentFlags().StringP("format", "f", "text", "output format (text|json)")
	return cmd
}
