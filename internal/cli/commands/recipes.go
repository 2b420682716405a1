package commands

import (
	"encoding/json"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/strscan/internal/cli/output"
	"github.com/leapstack-labs/strscan/internal/recipe"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// RecipeInfo describes a named recipe for listing.
type RecipeInfo struct {
	Name   string `json:"name" yaml:"name"`
	Source string `json:"source" yaml:"source"`
	Steps  string `json:"steps" yaml:"steps"`
}

// NewRecipesCommand creates the recipes command.
func NewRecipesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "recipes",
		Short: "List named recipes",
		Long: `List the built-in recipes and those defined under "recipes" in the
config file. A configured recipe with the same name as a built-in one
replaces it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContext(cmd)
			return renderRecipes(cmdCtx.Renderer, listRecipes(cmdCtx.Cfg.Recipes))
		},
	}
}

func listRecipes(configured map[string]string) []RecipeInfo {
	names := recipe.Names(configured)
	infos := make([]RecipeInfo, 0, len(names))
	for _, name := range names {
		src, _ := recipe.Lookup(name, configured)
		origin := "builtin"
		if _, ok := configured[name]; ok {
			origin = "config"
		}
		infos = append(infos, RecipeInfo{Name: name, Source: origin, Steps: src})
	}
	return infos
}

func renderRecipes(r *output.Renderer, infos []RecipeInfo) error {
	w := r.Out()
	switch r.EffectiveMode() {
	case output.ModeJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	case output.ModeYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(infos); err != nil {
			return err
		}
		return enc.Close()
	case output.ModeTable:
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Name", "Source", "Steps"})
		for _, info := range infos {
			t.AppendRow(table.Row{info.Name, info.Source, info.Steps})
		}
		t.Render()
		return nil
	default:
		for _, info := range infos {
			if _, err := fmt.Fprintf(w, "%-14s %-8s %s\n", info.Name, info.Source, info.Steps); err != nil {
				return err
			}
		}
		return nil
	}
}
