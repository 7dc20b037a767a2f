// Command library manages a book catalog stored in a JSON file.
//
//	library [global env/config] <command> [flags]
//
// Commands: list, add, remove, update, search, import.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/bistro/internal/library"
)

// Config is loaded from LIBRARY_-prefixed environment variables or
// library.yaml. Flags belong to the subcommands.
type Config struct {
	Catalog       string `default:"library.json" usage:"Path to the catalog file"`
	ExpectedBooks uint   `default:"1000000" usage:"Bloom filter sizing for imports"`
	Debug         bool   `default:"false" usage:"Enable debug logging"`
}

var errUsage = errors.New("usage: library <list|add|remove|update|search|import> [flags]")

func loadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		SkipFlags: true,
		EnvPrefix: "LIBRARY",
		Files:     []string{"library.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	return &cfg, nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	lg, err := newLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer func() { _ = lg.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	ctx = zctx.Base(ctx, lg)

	if err := run(ctx, os.Args[1:], os.Stdout, cfg); err != nil {
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		lg.Error("Command failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer, cfg *Config) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, args := args[0], args[1:]

	store := library.NewFileStore(cfg.Catalog)
	books, err := store.Load(ctx)
	if err != nil {
		return err
	}

	switch cmd {
	case "list":
		printBooks(out, books)
		return nil
	case "search":
		fs := flag.NewFlagSet("search", flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		if err := fs.Parse(args); err != nil {
			return err
		}
		printBooks(out, library.Search(books, fs.Arg(0)))
		return nil
	case "add":
		b, err := parseBook("add", args)
		if err != nil {
			return err
		}
		books, err = library.Add(books, b)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Added: %s\n", b)
	case "remove":
		fs := flag.NewFlagSet("remove", flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		title := fs.String("title", "", "title of the book to remove")
		if err := fs.Parse(args); err != nil {
			return err
		}
		books, err = library.Remove(books, *title)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Removed: %s\n", *title)
	case "update":
		fs := flag.NewFlagSet("update", flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		target := fs.String("match", "", "title of the book to replace")
		rest, b, err := bookFlags(fs, args)
		if err != nil {
			return err
		}
		if len(rest) > 0 {
			return errors.Errorf("unexpected arguments: %v", rest)
		}
		books, err = library.Update(books, *target, b)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Updated: %s\n", b)
	case "import":
		fs := flag.NewFlagSet("import", flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		if err := fs.Parse(args); err != nil {
			return err
		}
		if fs.NArg() == 0 {
			return errors.New("import: at least one .jsonl.gz file is required")
		}
		var stats library.ImportStats
		books, stats, err = library.NewImporter(cfg.ExpectedBooks).Import(ctx, books, fs.Args())
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Imported %d of %d books (%d duplicates, %d invalid)\n",
			stats.Added, stats.Read, stats.Duplicates, stats.Invalid)
	default:
		return errors.Wrapf(errUsage, "unknown command %q", cmd)
	}

	return store.Save(ctx, books)
}

func parseBook(name string, args []string) (library.Book, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	rest, b, err := bookFlags(fs, args)
	if err != nil {
		return library.Book{}, err
	}
	if len(rest) > 0 {
		return library.Book{}, errors.Errorf("unexpected arguments: %v", rest)
	}
	return b, nil
}

// bookFlags registers the book fields on fs and parses args.
func bookFlags(fs *flag.FlagSet, args []string) ([]string, library.Book, error) {
	var b library.Book
	fs.StringVar(&b.Title, "title", "", "book title")
	fs.StringVar(&b.Author, "author", "", "book author")
	fs.StringVar(&b.ISBN, "isbn", "", "ISBN")
	fs.IntVar(&b.Year, "year", 0, "publication year")
	if err := fs.Parse(args); err != nil {
		return nil, library.Book{}, err
	}
	return fs.Args(), b, nil
}

func printBooks(out io.Writer, books []library.Book) {
	if len(books) == 0 {
		fmt.Fprintln(out, "No books.")
		return
	}
	for i, b := range books {
		fmt.Fprintf(out, "%d. %s\n", i+1, b)
	}
}
