package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dpshade/character-template/internal/errors"
	"github.com/dpshade/character-template/internal/models"
)

// watchDebounce collapses the burst of events editors emit for one save
const watchDebounce = 100 * time.Millisecond

type countFlags struct {
	strategy string
	json     bool
	watch    bool
}

func (c *CLI) countCommand() *cobra.Command {
	var f countFlags

	cmd := &cobra.Command{
		Use:   "count [file]",
		Short: "Count approximate tokens in a file or stdin",
		Long: `Count approximate tokens. Without a file, or with "-", stdin is read.

With --watch the file is recounted every time it is written until interrupted.`,
		Example: `  chargen generate -f F++ -e | chargen count
  chargen count mira_template.txt --strategy whitespace
  chargen count mira_template.txt --watch`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}

			if f.watch {
				if path == "-" {
					return errors.ValidationError("--watch needs a file argument")
				}
				return c.watchCount(cmd.Context(), path, f)
			}

			text, err := c.readInput(path)
			if err != nil {
				return err
			}
			return c.printCount(cmd.Context(), text, f)
		},
	}

	cmd.Flags().StringVarP(&f.strategy, "strategy", "s", "", "Counting strategy: regex or whitespace (default from config)")
	cmd.Flags().BoolVar(&f.json, "json", false, "Print the count as JSON")
	cmd.Flags().BoolVarP(&f.watch, "watch", "w", false, "Recount whenever the file changes")

	return cmd
}

func (c *CLI) readInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(c.in)
		if err != nil {
			return "", errors.Wrap(err, errors.ErrCodeInvalidInput, "Failed to read stdin")
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.NewAppError(errors.ErrCodeFileNotFound, "File not found").
				WithContext("path", path)
		}
		return "", errors.Wrap(err, errors.ErrCodeInvalidInput, "Failed to read file")
	}
	return string(data), nil
}

func (c *CLI) printCount(ctx context.Context, text string, f countFlags) error {
	params := map[string]interface{}{"text": text}
	if f.strategy != "" {
		params["strategy"] = f.strategy
	}

	result, err := c.execute(ctx, "count", params)
	if err != nil {
		return err
	}
	tc := result.Data.(models.TokenCount)

	if f.json {
		return json.NewEncoder(c.out).Encode(tc)
	}
	fmt.Fprintln(c.out, result.Message)
	return nil
}

func (c *CLI) watchCount(ctx context.Context, path string, f countFlags) error {
	recount := func() error {
		text, err := c.readInput(path)
		if err != nil {
			return err
		}
		return c.printCount(ctx, text, f)
	}

	if err := recount(); err != nil {
		return err
	}
	c.status("Watching %s (ctrl+c to stop)", path)

	return watchFile(ctx, path, c.log, func() {
		if err := recount(); err != nil {
			c.status("%s", c.errorHandler.FormatError(err))
		}
	})
}

// watchFile calls onChange after path is written or recreated, until ctx ends.
// The parent directory is watched so editors that save by renaming are seen.
func watchFile(ctx context.Context, path string, log *zap.Logger, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "Failed to start file watcher")
	}
	defer watcher.Close()

	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return errors.Wrap(err, errors.ErrCodeFileNotFound, "Failed to watch file").
			WithContext("path", path)
	}

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			log.Debug("file changed", zap.String("path", event.Name), zap.String("op", event.Op.String()))
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			pending = timer.C

		case <-pending:
			pending = nil
			if _, err := os.Stat(target); err == nil {
				onChange()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("file watcher error", zap.Error(err))
		}
	}
}
