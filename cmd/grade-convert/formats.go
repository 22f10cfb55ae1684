// Copyright Jeffrey Alan Wang, 2026. All rights reserved.

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/jeffreyalanwang/grade-conversion-script/internal/input"
	"github.com/jeffreyalanwang/grade-conversion-script/internal/output"
	"github.com/jeffreyalanwang/grade-conversion-script/internal/params"
)

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List input and output formats and their parameters",
	RunE: func(cmd *cobra.Command, args []string) error {
		asYAML, _ := cmd.Flags().GetBool("yaml")
		cat := catalog()
		if asYAML {
			data, err := yaml.Marshal(cat)
			if err != nil {
				return fmt.Errorf("marshaling formats: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}
		printCatalog(cmd.OutOrStdout(), cat)
		return nil
	},
}

func init() {
	formatsCmd.Flags().Bool("yaml", false, "output the format list as YAML")
	rootCmd.AddCommand(formatsCmd)
}

type formatInfo struct {
	Name          string         `yaml:"name"`
	Description   string         `yaml:"description"`
	NeedsTemplate bool           `yaml:"needs_template,omitempty"`
	Params        []params.Field `yaml:"params,omitempty"`
}

type formatCatalog struct {
	Inputs  []formatInfo `yaml:"inputs"`
	Outputs []formatInfo `yaml:"outputs"`
}

func catalog() formatCatalog {
	var c formatCatalog
	for _, f := range input.Formats() {
		c.Inputs = append(c.Inputs, formatInfo{Name: f.Name, Description: f.Description, Params: params.Describe(f.Params)})
	}
	for _, f := range output.Formats() {
		c.Outputs = append(c.Outputs, formatInfo{
			Name:          f.Name,
			Description:   f.Description,
			NeedsTemplate: f.NeedsTemplate,
			Params:        params.Describe(f.Params),
		})
	}
	return c
}

func printCatalog(w io.Writer, c formatCatalog) {
	section := func(title string, formats []formatInfo) {
		fmt.Fprintln(w, headStyle.Render(title))
		for _, f := range formats {
			fmt.Fprintf(w, "  %s  %s\n", headStyle.Render(f.Name), f.Description)
			if f.NeedsTemplate {
				fmt.Fprintf(w, "      %s\n", mutedStyle.Render("requires --template"))
			}
			for _, p := range f.Params {
				fmt.Fprintf(w, "      %s\n", paramLine(p))
			}
		}
		fmt.Fprintln(w)
	}
	section("Input formats (--from)", c.Inputs)
	section("Output formats (--to)", c.Outputs)
}

func paramLine(p params.Field) string {
	line := fmt.Sprintf("%s (%s)", p.Name, p.Type)
	if p.Required {
		line += " required"
	}
	if p.Default != "" {
		line += fmt.Sprintf(" [default %s]", p.Default)
	}
	if p.Help != "" {
		line += ": " + p.Help
	}
	return mutedStyle.Render(line)
}
