package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dpshade/character-template/internal/commands"
	"github.com/dpshade/character-template/internal/errors"
	"github.com/dpshade/character-template/internal/models"
	"github.com/dpshade/character-template/internal/reference"
)

func (c *CLI) formatsCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "formats",
		Short: "List the template formats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := c.execute(cmd.Context(), "formats", nil)
			if err != nil {
				return err
			}
			formats := result.Data.([]models.FormatInfo)

			if asJSON {
				return json.NewEncoder(c.out).Encode(formats)
			}
			tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CODE\tNAME\tDESCRIPTION")
			for _, f := range formats {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", f.Code, f.Name, f.Description)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}

func (c *CLI) skeletonCommand() *cobra.Command {
	var pathsOnly bool

	cmd := &cobra.Command{
		Use:   "skeleton <format>",
		Short: "Show the field tree of a format as YAML",
		Example: `  chargen skeleton F++
  chargen skeleton scenario --paths`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := c.execute(cmd.Context(), "skeleton", map[string]interface{}{"format": args[0]})
			if err != nil {
				return err
			}
			data := result.Data.(commands.SkeletonResult)

			if pathsOnly {
				fmt.Fprintln(c.out, strings.Join(data.Paths, "\n"))
				return nil
			}

			enc := yaml.NewEncoder(c.out)
			enc.SetIndent(2)
			if err := enc.Encode(struct {
				Format models.FormatInfo `yaml:"format"`
				Fields interface{}       `yaml:"fields"`
			}{data.Format, data.Nodes}); err != nil {
				return errors.Wrap(err, errors.ErrCodeInternalError, "Failed to encode skeleton")
			}
			return enc.Close()
		},
	}

	cmd.Flags().BoolVar(&pathsOnly, "paths", false, "Print dotted field paths only")
	return cmd
}

func (c *CLI) referenceCommand() *cobra.Command {
	var raw bool

	sections := make([]string, 0, len(reference.Sections()))
	for _, s := range reference.Sections() {
		sections = append(sections, string(s))
	}

	cmd := &cobra.Command{
		Use:       "reference [section]",
		Aliases:   []string{"ref"},
		Short:     "Show writing reference material",
		Long:      "Show format help, trait word lists, appearance prompts and writing guides.\n\nSections: " + strings.Join(sections, ", "),
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: sections,
		RunE: func(cmd *cobra.Command, args []string) error {
			params := map[string]interface{}{}
			if len(args) == 1 {
				params["section"] = args[0]
			}

			result, err := c.execute(cmd.Context(), "reference", params)
			if err != nil {
				return err
			}
			md := result.Data.(commands.ReferenceResult).Markdown

			if raw {
				fmt.Fprintln(c.out, md)
				return nil
			}

			r, err := reference.NewTermRenderer(c.cfg.UI.GlamourStyle, c.cfg.UI.WordWrap)
			if err != nil {
				return errors.Wrap(err, errors.ErrCodeInternalError, "Failed to create markdown renderer")
			}
			out, err := r.Render(md)
			if err != nil {
				return errors.Wrap(err, errors.ErrCodeInternalError, "Failed to render markdown")
			}
			fmt.Fprint(c.out, out)
			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print markdown without terminal styling")
	return cmd
}

func (c *CLI) traitsCommand() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "traits [category]",
		Short: "List personality trait words",
		Long:  "List trait words, optionally one category: positive, neutral or negative.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := map[string]interface{}{}
			if len(args) == 1 {
				params["category"] = args[0]
			}

			result, err := c.execute(cmd.Context(), "traits", params)
			if err != nil {
				return err
			}
			for _, list := range result.Data.([]reference.TraitList) {
				fmt.Fprintf(c.out, "%s (%d)\n", list.Title, len(list.Words))
				fmt.Fprintf(c.out, "  %s\n", strings.Join(list.Words, ", "))
			}
			return nil
		},
	}

	var limit int
	search := &cobra.Command{
		Use:     "search <query>",
		Short:   "Fuzzy search trait words",
		Example: "  chargen traits search loyal --limit 5",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := map[string]interface{}{
				"query": strings.Join(args, " "),
				"limit": limit,
			}
			if category != "" {
				params["category"] = category
			}

			result, err := c.execute(cmd.Context(), "search-traits", params)
			if err != nil {
				return err
			}
			data := result.Data.(commands.SearchTraitsResult)
			if len(data.Matches) == 0 {
				c.status("No traits match '%s'", data.Query)
				return nil
			}

			tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
			for _, m := range data.Matches {
				fmt.Fprintf(tw, "%s\t%s\n", m.Word, m.Category)
			}
			return tw.Flush()
		},
	}
	search.Flags().IntVarP(&limit, "limit", "l", 10, "Maximum number of matches (0 for all)")
	search.Flags().StringVarP(&category, "category", "c", "", "Restrict to positive, neutral or negative")

	cmd.AddCommand(search)
	return cmd
}
