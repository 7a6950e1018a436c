// Package codec renders book lists for the terminal and reads draft files
// for bulk import.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/emzola/prolibrary/data"
	"github.com/emzola/prolibrary/internal/validator"
	"github.com/gabriel-vasile/mimetype"
	"gopkg.in/yaml.v3"
)

// Format names an output encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

var (
	ErrUnknownFormat      = errors.New("unknown output format")
	ErrUnsupportedContent = errors.New("import file must be JSON or YAML")
)

// ParseFormat maps a flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// ContentType returns the media type of the encoded output.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatYAML:
		return "application/yaml"
	}
	return "text/plain; charset=utf-8"
}

// Extension returns the file extension used when the output is stored.
func (f Format) Extension() string {
	switch f {
	case FormatJSON:
		return ".json"
	case FormatYAML:
		return ".yaml"
	}
	return ".txt"
}

// EncodeBooks writes books to w in the given format.
func EncodeBooks(w io.Writer, books []*data.Book, f Format) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "\t")
		return enc.Encode(books)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(books); err != nil {
			return err
		}
		return enc.Close()
	case FormatTable:
		return encodeTable(w, books)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

func encodeTable(w io.Writer, books []*data.Book) error {
	if len(books) == 0 {
		_, err := fmt.Fprintln(w, "No books in the catalog.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tISBN\tSTATUS\tADDED")
	for _, b := range books {
		isbn := b.Isbn
		if isbn == "" {
			isbn = "-"
		}
		added := "-"
		if !b.CreatedAt.IsZero() {
			added = b.CreatedAt.Format(time.DateOnly)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", b.ID, b.Title, b.Author, isbn, b.Status, added)
	}
	return tw.Flush()
}

// DecodeDrafts reads a list of drafts from a JSON or YAML document. The
// format is sniffed from the content, not taken from a file name, so an
// exported catalog can be imported again as is.
func DecodeDrafts(r io.Reader) ([]data.Draft, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	mtype := mimetype.Detect(buf)
	if !validator.Mime(mtype, "application/json", "text/plain") {
		return nil, fmt.Errorf("%w: detected %s", ErrUnsupportedContent, mtype.String())
	}
	var drafts []data.Draft
	if mtype.Is("application/json") {
		err = json.Unmarshal(buf, &drafts)
	} else {
		err = yaml.Unmarshal(buf, &drafts)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedContent, err)
	}
	return drafts, nil
}
