// Package shell implements an interactive line-oriented front end for the
// catalog.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/emzola/prolibrary/data"
	"github.com/emzola/prolibrary/internal/codec"
	"github.com/emzola/prolibrary/service"
)

// Catalog is the part of the catalog controller the shell drives.
type Catalog interface {
	Refresh(ctx context.Context) error
	Create(ctx context.Context, draft data.Draft) error
	ToggleStatus(ctx context.Context, bookID int64, current data.Status) error
	Remove(ctx context.Context, bookID int64, confirm service.Confirmer) (bool, error)
	FilteredView() []*data.Book
	Loading() bool
	SearchTerm() string
	SetSearchTerm(term string)
	Draft() data.Draft
	SetDraft(draft data.Draft)
	OpenCreateForm()
	CloseCreateForm()
	DismissAlert()
}

// Options controls how the shell asks for confirmation.
type Options struct {
	// Interactive is true when input comes from a terminal. Confirmations
	// are declined on non-interactive input unless AssumeYes is set.
	Interactive bool
	AssumeYes   bool
}

// Shell reads commands line by line and runs them against a Catalog.
type Shell struct {
	catalog Catalog
	sc      *bufio.Scanner
	out     io.Writer
	opts    Options
}

func New(catalog Catalog, in io.Reader, out io.Writer, opts Options) *Shell {
	return &Shell{
		catalog: catalog,
		sc:      bufio.NewScanner(in),
		out:     out,
		opts:    opts,
	}
}

const usage = `Available commands:
  list            show the books matching the current search
  search [TERM]   filter by title or author, no term clears the filter
  add             add a book
  toggle ID       switch a book between available and borrowed
  rm ID           delete a book
  refresh         reload the catalog
  help            show this message
  exit            leave the shell`

// Run processes commands until exit, end of input or ctx is done.
func (s *Shell) Run(ctx context.Context) error {
	if s.opts.Interactive {
		fmt.Fprintln(s.out, "ProLibrary catalog. Type 'help' for commands.")
	}
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.prompt("> ")
		if !s.sc.Scan() {
			return s.sc.Err()
		}
		fields := strings.Fields(s.sc.Text())
		if len(fields) == 0 {
			continue
		}
		cmd, args := strings.ToLower(fields[0]), fields[1:]
		switch cmd {
		case "list", "ls":
			s.list()
		case "search":
			s.catalog.SetSearchTerm(strings.Join(args, " "))
			s.list()
		case "add":
			s.add(ctx)
		case "toggle":
			s.toggle(ctx, args)
		case "rm", "delete":
			s.remove(ctx, args)
		case "refresh":
			s.refresh(ctx)
		case "help":
			fmt.Fprintln(s.out, usage)
		case "exit", "quit":
			return nil
		default:
			fmt.Fprintf(s.out, "Unknown command %q. Type 'help' for commands.\n", cmd)
		}
	}
}

// Confirm asks the user a yes/no question. Anything but y or yes declines.
func (s *Shell) Confirm(ctx context.Context, prompt string) bool {
	if s.opts.AssumeYes {
		fmt.Fprintf(s.out, "%s Confirmed by --yes.\n", prompt)
		return true
	}
	if !s.opts.Interactive {
		fmt.Fprintf(s.out, "%s Declined: input is not a terminal, pass --yes to confirm.\n", prompt)
		return false
	}
	fmt.Fprintf(s.out, "%s [y/N]: ", prompt)
	if !s.sc.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(s.sc.Text()))
	return answer == "y" || answer == "yes"
}

func (s *Shell) prompt(p string) {
	if s.opts.Interactive {
		fmt.Fprint(s.out, p)
	}
}

func (s *Shell) list() {
	if s.catalog.Loading() {
		fmt.Fprintln(s.out, "Loading...")
	}
	if term := s.catalog.SearchTerm(); term != "" {
		fmt.Fprintf(s.out, "Books matching %q:\n", term)
	}
	codec.EncodeBooks(s.out, s.catalog.FilteredView(), codec.FormatTable)
}

// ask prints label and returns the entered line. An empty answer keeps
// current, which is shown in brackets.
func (s *Shell) ask(label, current string) (string, bool) {
	if current != "" {
		s.prompt(fmt.Sprintf("%s [%s]: ", label, current))
	} else {
		s.prompt(label + ": ")
	}
	if !s.sc.Scan() {
		return "", false
	}
	answer := strings.TrimSpace(s.sc.Text())
	if answer == "" {
		return current, true
	}
	return answer, true
}

func (s *Shell) add(ctx context.Context) {
	s.catalog.OpenCreateForm()
	draft := s.catalog.Draft()
	var ok bool
	if draft.Title, ok = s.ask("Title", draft.Title); !ok {
		return
	}
	if draft.Author, ok = s.ask("Author", draft.Author); !ok {
		return
	}
	if draft.Isbn, ok = s.ask("ISBN (optional)", draft.Isbn); !ok {
		return
	}
	s.catalog.SetDraft(draft)
	err := s.catalog.Create(ctx, draft)
	if err != nil {
		s.printError(err)
		if errors.Is(err, service.ErrFailedValidation) {
			s.catalog.CloseCreateForm()
		} else {
			s.catalog.DismissAlert()
		}
		return
	}
	fmt.Fprintf(s.out, "Added %q by %s.\n", draft.Title, draft.Author)
}

func (s *Shell) toggle(ctx context.Context, args []string) {
	book, ok := s.visibleBook(args)
	if !ok {
		return
	}
	err := s.catalog.ToggleStatus(ctx, book.ID, book.Status)
	if err != nil {
		s.printError(err)
		return
	}
	fmt.Fprintf(s.out, "%q is now %s.\n", book.Title, book.Status.Toggle())
}

func (s *Shell) remove(ctx context.Context, args []string) {
	bookID, ok := s.parseID(args)
	if !ok {
		return
	}
	deleted, err := s.catalog.Remove(ctx, bookID, s)
	switch {
	case err != nil:
		s.printError(err)
	case deleted:
		fmt.Fprintf(s.out, "Deleted book %d.\n", bookID)
	default:
		fmt.Fprintln(s.out, "Cancelled.")
	}
}

func (s *Shell) refresh(ctx context.Context) {
	err := s.catalog.Refresh(ctx)
	if err != nil {
		s.printError(err)
		return
	}
	fmt.Fprintf(s.out, "%d book(s) shown.\n", len(s.catalog.FilteredView()))
}

// visibleBook finds the book with the id in args among the books currently
// shown, the only ones the user can act on.
func (s *Shell) visibleBook(args []string) (*data.Book, bool) {
	bookID, ok := s.parseID(args)
	if !ok {
		return nil, false
	}
	for _, book := range s.catalog.FilteredView() {
		if book.ID == bookID {
			return book, true
		}
	}
	fmt.Fprintf(s.out, "Book %d is not in the current view.\n", bookID)
	return nil, false
}

func (s *Shell) parseID(args []string) (int64, bool) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "Expected exactly one book ID.")
		return 0, false
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id < 1 {
		fmt.Fprintf(s.out, "Invalid book ID: %s\n", args[0])
		return 0, false
	}
	return id, true
}

func (s *Shell) printError(err error) {
	fmt.Fprintf(s.out, "Error: %v\n", err)
}
