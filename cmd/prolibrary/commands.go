package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/emzola/prolibrary/clients"
	"github.com/emzola/prolibrary/data"
	"github.com/emzola/prolibrary/internal/codec"
	"github.com/emzola/prolibrary/internal/shell"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog over a JSON HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(os.Stdout)
			if err != nil {
				return err
			}
			defer a.close()
			return a.serve()
		},
	}
}

func newShellCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Browse and edit the catalog interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(os.Stderr, func(ctx context.Context, a *app) error {
				a.service.Wait()
				sh := shell.New(a.service, cmd.InOrStdin(), cmd.OutOrStdout(), shellOptions(opts))
				err := sh.Run(ctx)
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			})
		},
	}
}

func newListCmd(opts *options) *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List books, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := codec.ParseFormat(opts.output)
			if err != nil {
				return err
			}
			return withApp(os.Stderr, func(ctx context.Context, a *app) error {
				if err := a.service.Refresh(ctx); err != nil {
					return err
				}
				a.service.SetSearchTerm(search)
				return codec.EncodeBooks(cmd.OutOrStdout(), a.service.FilteredView(), format)
			})
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "only show books whose title or author contains this text")
	return cmd
}

func newAddCmd() *cobra.Command {
	var draft data.Draft
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a book",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(os.Stderr, func(ctx context.Context, a *app) error {
				if err := a.service.Create(ctx, draft); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %q by %s.\n", draft.Title, draft.Author)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&draft.Title, "title", "", "book title (required)")
	cmd.Flags().StringVar(&draft.Author, "author", "", "book author (required)")
	cmd.Flags().StringVar(&draft.Isbn, "isbn", "", "book ISBN")
	return cmd
}

func newToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle ID",
		Short: "Switch a book between available and borrowed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(os.Stderr, func(ctx context.Context, a *app) error {
				if err := a.service.Refresh(ctx); err != nil {
					return err
				}
				var book *data.Book
				for _, b := range a.service.FilteredView() {
					if b.ID == bookID {
						book = b
						break
					}
				}
				if book == nil {
					return fmt.Errorf("book %d not found", bookID)
				}
				if err := a.service.ToggleStatus(ctx, book.ID, book.Status); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%q is now %s.\n", book.Title, book.Status.Toggle())
				return nil
			})
		},
	}
}

func newRemoveCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"delete"},
		Short:   "Delete a book after confirmation",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(os.Stderr, func(ctx context.Context, a *app) error {
				a.service.Wait()
				confirm := shell.New(a.service, cmd.InOrStdin(), cmd.OutOrStdout(), shellOptions(opts))
				deleted, err := a.service.Remove(ctx, bookID, confirm)
				if err != nil {
					return err
				}
				if deleted {
					fmt.Fprintf(cmd.OutOrStdout(), "Deleted book %d.\n", bookID)
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
				}
				return nil
			})
		},
	}
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Add every book listed in a JSON or YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			drafts, err := codec.DecodeDrafts(f)
			if err != nil {
				return err
			}
			return withApp(os.Stderr, func(ctx context.Context, a *app) error {
				out := cmd.OutOrStdout()
				var failed int
				for _, draft := range drafts {
					fmt.Fprintf(out, "Importing: %s by %s... ", draft.Title, draft.Author)
					if err := a.service.Create(ctx, draft); err != nil {
						fmt.Fprintf(out, "ERROR - %v\n", err)
						failed++
						continue
					}
					fmt.Fprintln(out, "SUCCESS")
				}
				fmt.Fprintf(out, "\nImported %d of %d books.\n", len(drafts)-failed, len(drafts))
				if failed > 0 {
					return fmt.Errorf("%d book(s) could not be imported", failed)
				}
				return nil
			})
		},
	}
}

func newExportCmd(opts *options) *cobra.Command {
	var toS3 bool
	var file string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the whole catalog to stdout, a file or S3",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := codec.ParseFormat(opts.output)
			if err != nil {
				return err
			}
			return withApp(os.Stderr, func(ctx context.Context, a *app) error {
				if err := a.service.Refresh(ctx); err != nil {
					return err
				}
				var buf bytes.Buffer
				if err := codec.EncodeBooks(&buf, a.service.FilteredView(), format); err != nil {
					return err
				}
				switch {
				case toS3:
					client, err := clients.NewS3Client(ctx, a.config)
					if err != nil {
						return err
					}
					exporter, err := clients.NewS3Exporter(client, a.config.S3.Bucket)
					if err != nil {
						return err
					}
					key := "exports/catalog-" + time.Now().UTC().Format("20060102T150405Z") + format.Extension()
					uri, err := exporter.Upload(ctx, key, format.ContentType(), &buf)
					if err != nil {
						return err
					}
					a.logger.PrintInfo("catalog exported", map[string]string{"location": uri})
					fmt.Fprintln(cmd.OutOrStdout(), uri)
				case file != "":
					return os.WriteFile(file, buf.Bytes(), 0o644)
				default:
					_, err := buf.WriteTo(cmd.OutOrStdout())
					return err
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&toS3, "s3", false, "upload the export to the configured S3 bucket")
	cmd.Flags().StringVarP(&file, "file", "f", "", "write the export to this file")
	return cmd
}

// shellOptions decides how confirmations are answered. Prompts are only
// shown when stdin is a terminal.
func shellOptions(opts *options) shell.Options {
	return shell.Options{
		Interactive: term.IsTerminal(int(os.Stdin.Fd())),
		AssumeYes:   opts.yes,
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid book ID: %s", s)
	}
	return id, nil
}
