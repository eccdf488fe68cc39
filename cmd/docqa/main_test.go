package main

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestSetupLogger(t *testing.T) {
	defer slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	newApp := func() *cli.App {
		return &cli.App{
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "log-level", Value: "info"},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error { return nil },
		}
	}

	t.Run("accepts valid levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error", "WARN"} {
			err := newApp().Run([]string{"docqa", "--log-level", level})
			require.NoError(t, err, "level %q", level)
		}
	})

	t.Run("rejects unknown level", func(t *testing.T) {
		err := newApp().Run([]string{"docqa", "--log-level", "verbose"})
		assert.ErrorContains(t, err, "invalid log level")
	})
}

func TestDeleteCommandArgValidation(t *testing.T) {
	app := &cli.App{
		Commands: []*cli.Command{
			{Name: "delete", Action: deleteCommand},
		},
	}

	err := app.Run([]string{"docqa", "delete"})
	assert.ErrorContains(t, err, "exactly one file ID")

	err = app.Run([]string{"docqa", "delete", "not-a-number"})
	assert.ErrorContains(t, err, "invalid file ID")
}
