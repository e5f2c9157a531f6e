package cli

import (
	stderrors "errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/dpshade/character-template/internal/api"
	"github.com/dpshade/character-template/internal/errors"
	"github.com/dpshade/character-template/internal/ui"
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server. Endpoints live under /api/v1, documentation at
/api/docs and Prometheus metrics at /metrics. The server shuts down gracefully on
interrupt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			serverCfg := c.cfg.Server
			if cmd.Flags().Changed("host") {
				serverCfg.Host = host
			}
			if cmd.Flags().Changed("port") {
				serverCfg.Port = port
			}
			if serverCfg.Port < 1 || serverCfg.Port > 65535 {
				return errors.ValidationError("Server port out of range").WithContext("port", serverCfg.Port)
			}

			return api.NewAPIServer(c.service, serverCfg).Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&host, "host", "localhost", "Listen host (overrides config)")
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "Listen port (overrides config)")
	return cmd
}

func (c *CLI) tuiCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "tui",
		Short:       "Start the interactive template editor (default)",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"interactive": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTUI(cmd)
		},
	}
}

func (c *CLI) runTUI(cmd *cobra.Command) error {
	model, err := ui.NewModel(c.service, ui.Options{
		GlamourStyle: c.cfg.UI.GlamourStyle,
		WordWrap:     c.cfg.UI.WordWrap,
		ErrorHandler: errors.NewTUIErrorHandler(c.log, true),
	})
	if err != nil {
		return err
	}

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil && !stderrors.Is(err, tea.ErrProgramKilled) {
		return errors.Wrap(err, errors.ErrCodeInternalError, "Interactive editor failed")
	}
	return nil
}
