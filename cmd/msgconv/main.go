// Command msgconv converts Outlook .msg files to RFC 5322 messages and
// inspects their contents.
//
// Usage:
//
//	msgconv convert [flags] file.msg...
//	msgconv dump [flags] file.msg
//	msgconv body [flags] file.msg
//	msgconv extract [flags] file.msg
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/pflag"

	"github.com/robert-malhotra/go-msg/internal/config"
	"github.com/robert-malhotra/go-msg/msg"
)

const usage = `Usage: msgconv <command> [flags] file.msg...

Commands:
  convert   convert .msg files to .eml
  dump      print the message tree
  body      print the best available body
  extract   write attachments to a directory

Run "msgconv <command> --help" for command flags.
`

type command func(ctx context.Context, env *env, fs *pflag.FlagSet) error

type commandSpec struct {
	run   command
	flags func(fs *pflag.FlagSet)
}

var commands = map[string]commandSpec{
	"convert": {runConvert, convertFlags},
	"dump":    {runDump, nil},
	"body":    {runBody, bodyFlags},
	"extract": {runExtract, extractFlags},
}

// env is the state shared by every command.
type env struct {
	stdout io.Writer
	stderr io.Writer
	cfg    *config.Config
	logger *slog.Logger
	opts   []msg.Option
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "msgconv: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return errors.New("missing command")
	}
	name := args[0]
	if name == "-h" || name == "--help" || name == "help" {
		fmt.Fprint(stdout, usage)
		return nil
	}
	spec, ok := commands[name]
	if !ok {
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("unknown command %q", name)
	}

	fs := pflag.NewFlagSet("msgconv "+name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	commonFlags(fs)
	if spec.flags != nil {
		spec.flags(fs)
	}
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	e, err := setup(fs, stdout, stderr)
	if err != nil {
		return err
	}
	return spec.run(ctx, e, fs)
}

func commonFlags(fs *pflag.FlagSet) {
	fs.StringP("config", "c", config.DefaultPath(), "configuration file")
	fs.String("log-level", "info", "log level (debug, info, warn, error)")
	fs.Int("codepage", 0, "force the code page of 8-bit strings")
	fs.Bool("resolve-references", true, "read by-reference attachments from disk")
	fs.String("reference-root", "", "directory relative attachment references are resolved against")
	fs.String("default-domain", "", "mail domain for unresolved Exchange addresses")
}

func setup(fs *pflag.FlagSet, stdout, stderr io.Writer) (*env, error) {
	path, err := fs.GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path, fs)
	if err != nil {
		return nil, err
	}
	level, err := cfg.Log.SlogLevel()
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	return &env{
		stdout: stdout,
		stderr: stderr,
		cfg:    cfg,
		logger: logger,
		opts:   cfg.Options(logger),
	}, nil
}

// single returns the only positional argument.
func single(fs *pflag.FlagSet) (string, error) {
	if fs.NArg() != 1 {
		return "", fmt.Errorf("expected one .msg file, got %d arguments", fs.NArg())
	}
	return fs.Arg(0), nil
}
