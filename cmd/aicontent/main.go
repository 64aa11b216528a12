package main

import (
	"io"
	"log"
	"os"

	"github.com/alexflint/go-arg"

	"github.com/hayeah/aicontent/internal/export"
)

// Args defines the command-line arguments
type Args struct {
	Root           string   `arg:"positional" help:"directory to scan (default: the current directory)"`
	Print          bool     `arg:"-p,--print" help:"print the export of the saved selection and exit"`
	Copy           bool     `arg:"-c,--copy" help:"copy the export of the saved selection to the clipboard and exit"`
	List           bool     `arg:"-l,--list" help:"list the selected files and exit"`
	Select         []string `arg:"-s,--select,separate" help:"also select files matching GLOB (repeatable)"`
	Clear          bool     `arg:"--clear" help:"forget the saved selection before starting"`
	Config         string   `arg:"--config" help:"config file (default: ROOT/.aicontent.toml, then the user config dir)"`
	Store          string   `arg:"--store" help:"selection store: json or sqlite"`
	StateDir       string   `arg:"--state-dir" help:"directory holding saved selections"`
	Metrics        bool     `arg:"-m,--metrics" help:"print a token breakdown of the export to stderr"`
	TokenEstimator string   `arg:"--token-estimator" help:"token counter: simple or tiktoken"`
	Log            string   `arg:"--log" help:"append logs to FILE"`
	Debug          bool     `arg:"--debug" help:"verbose, human-friendly logs"`
}

// Description is shown at the top of --help.
func (Args) Description() string {
	return "aicontent picks files from a directory tree and exports them as one text block for an LLM prompt."
}

// headless is true when the run never shows the tree view.
func (a Args) headless() bool {
	return a.Print || a.Copy || a.List
}

// Streams are the process outputs. The tree view draws on Stderr so that
// Stdout only ever carries the export. A nil Clipboard means the system
// clipboard.
type Streams struct {
	Stdout    io.Writer
	Stderr    io.Writer
	Clipboard export.Sink
}

func (s Streams) clipboard() export.Sink {
	if s.Clipboard == nil {
		return export.ClipboardSink{}
	}
	return s.Clipboard
}

func run(args Args, streams Streams) error {
	app, cleanup, err := BuildApp(args, streams)
	if err != nil {
		return err
	}
	defer cleanup()
	return app.Run()
}

// main is our entrypoint: parse args and run the application
func main() {
	var args Args
	arg.MustParse(&args)

	if err := run(args, Streams{Stdout: os.Stdout, Stderr: os.Stderr}); err != nil {
		log.Fatal(err)
	}
}
