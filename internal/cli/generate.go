package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dpshade/character-template/internal/commands"
	"github.com/dpshade/character-template/internal/models"
	"github.com/dpshade/character-template/internal/storage"
)

type generateFlags struct {
	name        string
	format      string
	example     bool
	charType    string
	json        bool
	copy        bool
	save        bool
	out         string
	withMeta    bool
	interactive bool
}

func (c *CLI) generateCommand() *cobra.Command {
	var f generateFlags

	cmd := &cobra.Command{
		Use:     "generate",
		Aliases: []string{"gen", "render"},
		Short:   "Render a character template",
		Long: `Render the template for a format and print it to stdout.

The token count is printed to stderr. Use --save or --out to write the template to
a file and --copy to place it on the clipboard.`,
		Example: `  chargen generate --name Mira --format F++ --example
  chargen generate --format personality --save
  chargen generate --interactive`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.interactive {
				if err := c.askGenerate(cmd, &f); err != nil {
					return err
				}
			}
			return c.runGenerate(cmd, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.name, "name", "n", "", "Character name")
	flags.StringVarP(&f.format, "format", "f", "", "Template format: F++, S++ or P++ (or appearance, scenario, personality)")
	flags.BoolVarP(&f.example, "example", "e", false, "Fill every field with the example character")
	flags.StringVarP(&f.charType, "type", "t", "", "Character type: adapted or original")
	flags.BoolVar(&f.json, "json", false, "Print the template as a chat message JSON array")
	flags.BoolVar(&f.copy, "copy", false, "Copy the template to the clipboard")
	flags.BoolVar(&f.save, "save", false, "Save the template as <name>_template.txt in the export directory")
	flags.StringVarP(&f.out, "out", "o", "", "Save the template to this path")
	flags.BoolVar(&f.withMeta, "with-meta", false, "Save as markdown with YAML frontmatter describing the request")
	flags.BoolVarP(&f.interactive, "interactive", "i", false, "Ask for the fields interactively")

	return cmd
}

// askGenerate fills the flags the user did not set by prompting
func (c *CLI) askGenerate(cmd *cobra.Command, f *generateFlags) error {
	var err error

	if !cmd.Flags().Changed("name") {
		if f.name, err = c.prompter.Input("Character name:", f.name); err != nil {
			return err
		}
	}

	if !cmd.Flags().Changed("format") {
		options := make([]string, 0, len(models.Formats()))
		for _, format := range models.Formats() {
			options = append(options, formatOption(format))
		}
		choice, err := c.prompter.Select("Template format:", options, options[0])
		if err != nil {
			return err
		}
		f.format = strings.Fields(choice)[0]
	}

	if !cmd.Flags().Changed("example") {
		if f.example, err = c.prompter.Confirm("Fill with the example character?", false); err != nil {
			return err
		}
	}

	if !cmd.Flags().Changed("type") {
		options := make([]string, 0, len(models.CharacterTypes()))
		for _, ct := range models.CharacterTypes() {
			options = append(options, string(ct))
		}
		if f.charType, err = c.prompter.Select("Character type:", options, options[0]); err != nil {
			return err
		}
	}

	return nil
}

func formatOption(f models.Format) string {
	return fmt.Sprintf("%s  %s", f, f.Description())
}

func (c *CLI) runGenerate(cmd *cobra.Command, f generateFlags) error {
	ctx := cmd.Context()

	params := map[string]interface{}{
		"name":           f.name,
		"format":         f.format,
		"example":        f.example,
		"character_type": f.charType,
	}
	if f.json {
		params["output"] = "json"
	}

	result, err := c.execute(ctx, "render", params)
	if err != nil {
		return err
	}
	data := result.Data.(commands.RenderResult)

	output := data.Document.Text
	if f.json {
		output = data.JSON
	}
	fmt.Fprintln(c.out, output)
	c.status("Token Count: %d (%s)", data.Tokens.Count, data.Tokens.Strategy)

	if f.copy {
		if status, err := c.service.Copy(output); err != nil {
			c.status("%s", c.errorHandler.FormatError(err))
		} else {
			c.status("%s", status)
		}
	}

	if f.save || f.out != "" || f.withMeta {
		exportParams := map[string]interface{}{
			"name":           f.name,
			"text":           data.Document.Text,
			"format":         f.format,
			"example":        f.example,
			"character_type": f.charType,
			"with_meta":      f.withMeta,
		}
		if f.out != "" {
			exportParams["path"] = f.out
		}
		saved, err := c.execute(ctx, "export", exportParams)
		if err != nil {
			return err
		}
		c.status("Saved %s", saved.Data.(*storage.SaveResult).Path)
	}

	return nil
}
