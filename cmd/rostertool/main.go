// Command rostertool works with player roster spreadsheets from the shell:
// it writes the blank template, checks a filled-in file without saving it
// and imports a file straight into the database.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/cssbattle/championship/internal/config"
	"github.com/cssbattle/championship/internal/core"
	"github.com/cssbattle/championship/internal/logging"
	"github.com/cssbattle/championship/internal/storage"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "rostertool",
		Usage:     "player roster spreadsheet utilities",
		Writer:    stdout,
		ErrWriter: stderr,
		Commands: []*cli.Command{
			newTemplateCommand(),
			newValidateCommand(),
			newImportCommand(),
		},
	}
}

func newTemplateCommand() *cli.Command {
	return &cli.Command{
		Name:  "template",
		Usage: "write the blank roster template",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "output file",
				Value:   core.TemplateFilename(),
			},
		},
		Action: func(c *cli.Context) error {
			data, err := core.GenerateTemplate()
			if err != nil {
				return fmt.Errorf("generate template: %w", err)
			}
			out := c.String("out")
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write template: %w", err)
			}
			fmt.Fprintf(c.App.Writer, "Wrote %s (%d bytes)\n", out, len(data))
			return nil
		},
	}
}

func newValidateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "check a roster file without saving it",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "print the parsed players as JSON"},
		},
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return errors.New("validate: missing FILE argument")
			}

			records, err := core.ParseFile(path)
			if err != nil {
				return userFailure(c.App.ErrWriter, err)
			}

			if c.Bool("json") {
				enc := json.NewEncoder(c.App.Writer)
				enc.SetIndent("", "  ")
				return enc.Encode(records)
			}

			fmt.Fprintf(c.App.Writer, "%s: %d players OK\n", filepath.Base(path), len(records))
			printRecords(c.App.Writer, records)
			return nil
		},
	}
}

func newImportCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "import a roster file into the database",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "no-migrate", Usage: "skip applying the schema first"},
		},
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return errors.New("import: missing FILE argument")
			}

			_ = godotenv.Load()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !cfg.Database.HasDatabase() {
				return errors.New("import: DATABASE_URL is not set")
			}
			logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

			ctx := c.Context
			if ctx == nil {
				ctx = context.Background()
			}

			pool, err := storage.OpenPool(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer pool.Close()

			store := storage.NewPostgres(pool, storage.Options{CreateMissingGroups: cfg.Import.CreateMissingGroups})
			if !c.Bool("no-migrate") {
				if err := store.Migrate(ctx); err != nil {
					return err
				}
			}

			f, err := os.Open(path)
			if err != nil {
				return userFailure(c.App.ErrWriter, &core.ImportError{Kind: core.ErrFileRead, Err: err})
			}
			defer f.Close()

			service := core.NewService(store,
				core.WithMaxFileSize(cfg.Import.MaxFileSize),
				core.WithSaveTimeout(cfg.Import.SaveTimeout),
			)
			result, err := service.Import(ctx, filepath.Base(path), f)
			if err != nil {
				return userFailure(c.App.ErrWriter, err)
			}

			fmt.Fprintf(c.App.Writer, "Imported %d players from %d rows (%d new, %d updated, %d groups created) in %s\n",
				result.Total, result.Rows, result.Inserted, result.Updated, result.GroupsCreated, result.Duration.Round(time.Millisecond))
			return nil
		},
	}
}

// userFailure prints the user-facing message for err and returns it as a
// *core.UserError, so the process exits with the short message while
// errors.Is still reaches the technical cause.
func userFailure(w io.Writer, err error) error {
	ue := core.NewUserError(err)
	fmt.Fprintf(w, "%s (Code: %s). %s\n", ue.User.Message, ue.User.Code, ue.User.Action)
	if detail := core.Detail(err); detail != "" {
		fmt.Fprintf(w, "  %s\n", detail)
	}
	return ue
}

func printRecords(w io.Writer, records []core.PlayerRecord) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tEMAIL\tGROUP\tPHONE\tVERIFIED")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\n", r.FullName, r.Email, r.GroupName, r.Phone, r.Verified)
	}
	tw.Flush()
}
