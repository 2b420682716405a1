package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/strscan/internal/recipe"
)

// generateRecipeDocs writes the step language reference.
func generateRecipeDocs(outDir string) error {
	log.Printf("Generating recipe docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	w := NewMarkdownWriter()
	w.Frontmatter("Recipes", "Reference for the strscan recipe step language")
	w.GeneratedMarker()

	w.Header(1, "Recipes")
	w.Paragraph(`A recipe is a list of steps separated by whitespace. Steps run left to
right over one input line; each step either extracts a value or matches
text. A step fails when the reader cannot perform it, and the line is
reported with the offset where the failing step started.`)
	w.CodeBlock("text", "[name=]op[:arg]")
	w.Paragraph("Arguments containing whitespace or quotes are written as Go string literals, e.g. " +
		InlineCode(`lit:"HTTP/1.1 "`) + ". Unnamed steps report their value under the operation name; " +
		InlineCode("lit") + " and " + InlineCode("char") + " only report a value when named, and " +
		InlineCode("ws") + " never does.")

	w.Header(2, "Steps")
	var rows [][]string
	for _, op := range recipe.Ops() {
		syntax := op
		if recipe.OpTakesArg(op) {
			syntax += ":ARG"
		}
		rows = append(rows, []string{InlineCode(syntax), recipe.OpDoc(op)})
	}
	w.Table([]string{"Step", "Description"}, rows)

	w.Paragraph("Numeric and boolean steps skip leading whitespace. Numbers accept an optional " +
		InlineCode("+") + " sign, and signed types also accept " + InlineCode("-") + ".")

	w.Header(2, "Built-in recipes")
	builtins := recipe.Builtins()
	rows = rows[:0]
	for _, name := range recipe.Names(nil) {
		rows = append(rows, []string{InlineCode(name), InlineCode(builtins[name])})
	}
	w.Table([]string{"Name", "Steps"}, rows)

	w.Paragraph("Define more under " + InlineCode("recipes") + " in " + InlineCode("strscan.yaml") + ":")
	w.CodeBlock("yaml", `recipes:
  access-log: 'ip=word ws lit:- ws lit:- ws char:[ ts=until:] char:] ws request=rest'
named: access-log`)

	filename := filepath.Join(outDir, "index.md")
	return os.WriteFile(filename, w.Bytes(), 0600)
}
