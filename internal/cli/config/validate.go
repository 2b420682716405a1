package config

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/leapstack-labs/strscan/internal/recipe"
)

// OutputFormats lists the accepted values of the output option.
var OutputFormats = []string{"auto", "table", "json", "yaml", "text"}

// ColorModes lists the accepted values of the color option.
var ColorModes = []string{"auto", "always", "never"}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !slices.Contains(OutputFormats, c.Output) {
		return fmt.Errorf("unknown output format %q (expected one of %s)", c.Output, strings.Join(OutputFormats, ", "))
	}
	if !slices.Contains(ColorModes, c.Color) {
		return fmt.Errorf("unknown color mode %q (expected one of %s)", c.Color, strings.Join(ColorModes, ", "))
	}

	names := make([]string, 0, len(c.Recipes))
	for name := range c.Recipes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, err := recipe.Compile(c.Recipes[name]); err != nil {
			return fmt.Errorf("recipe %q: %w", name, err)
		}
	}

	if _, err := c.ActiveRecipe(); err != nil {
		return err
	}
	return nil
}

// ActiveRecipe compiles the recipe selected by the configuration: the
// inline recipe if set, otherwise the named one.
func (c *Config) ActiveRecipe() (*recipe.Recipe, error) {
	src := c.Recipe
	if src == "" {
		var ok bool
		src, ok = recipe.Lookup(c.Named, c.Recipes)
		if !ok {
			return nil, fmt.Errorf("unknown recipe %q\nHint: run 'strscan recipes' to list available recipes", c.Named)
		}
	}

	rc, err := recipe.Compile(src)
	if err != nil {
		return nil, err
	}
	rc.TrimRest = c.TrimRest
	return rc, nil
}
