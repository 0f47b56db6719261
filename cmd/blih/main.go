// Command blih manages repositories and SSH keys on the blih service.
package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"os/user"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"

	"github.com/vitalvas/blih/client"
	"github.com/vitalvas/blih/config"
	"github.com/vitalvas/blih/credential"
	"github.com/vitalvas/blih/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.LookupEnv, os.Stdin, os.Stdout, os.Stderr)
	stop()

	os.Exit(code)
}

// exitRequest carries kong's exit code (after --help) out of the parser.
type exitRequest int

// run executes one command and returns the process exit status. It never
// exits itself.
func run(ctx context.Context, args []string, lookupEnv func(string) (string, bool), stdin io.Reader, stdout, stderr io.Writer) (code int) {
	var cli CLI

	defer func() {
		if r := recover(); r != nil {
			req, ok := r.(exitRequest)
			if !ok {
				panic(r)
			}

			code = int(req)
		}
	}()

	parser, err := kong.New(&cli,
		kong.Name("blih"),
		kong.Description("Manage repositories and SSH keys on the blih service."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(code int) { panic(exitRequest(code)) }),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
	)
	if err != nil {
		printError(stderr, err)
		return 1
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		printError(stderr, err)
		return 1
	}

	log := logger.New(stderr, min(cli.Verbose, logger.MaxVerbosity))

	cfg, err := loadConfig(cli, lookupEnv)
	if err != nil {
		printError(stderr, err)
		return 1
	}

	a := &app{
		ctx:       ctx,
		cfg:       cfg,
		verbosity: cli.Verbose,
		out:       stdout,
		log:       log,
		resolver: &credential.Resolver{
			Prompter: &credential.TerminalPrompter{In: stdin, Out: stderr},
			Logger:   &log,
		},
	}

	if err := kctx.Run(a); err != nil {
		log.Debug().Err(err).Msg("command failed")
		printError(stderr, err)

		return 1
	}

	return 0
}

// loadConfig merges defaults, the configuration file, the environment and
// the global flags, in increasing order of precedence.
func loadConfig(cli CLI, lookupEnv func(string) (string, bool)) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)

	if cli.Config != "" {
		cfg, err = config.Load(cli.Config)
	} else {
		cfg, err = config.LoadDefault()
	}

	if err != nil {
		return nil, err
	}

	if err := cfg.ApplyEnv(lookupEnv); err != nil {
		return nil, err
	}

	if cli.User != "" {
		cfg.User = cli.User
	}

	if cli.Token != "" {
		cfg.Token = cli.Token
	}

	if cli.URL != "" {
		cfg.URL = cli.URL
	}

	if cfg.User == "" {
		cfg.User = currentUser(lookupEnv)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// currentUser returns the login name: LOGNAME, USER, LNAME or USERNAME,
// then the account database.
func currentUser(lookupEnv func(string) (string, bool)) string {
	for _, name := range []string{"LOGNAME", "USER", "LNAME", "USERNAME"} {
		if v, ok := lookupEnv(name); ok && v != "" {
			return v
		}
	}

	if u, err := user.Current(); err == nil {
		return u.Username
	}

	return ""
}

// printError reports a fatal error on stderr.
func printError(w io.Writer, err error) {
	red := color.New(color.FgRed)

	var pe *client.ProtocolError
	if errors.As(err, &pe) {
		red.Fprintf(w, "[CRITICAL] : %s\n", pe.Message)
		return
	}

	if errors.Is(err, credential.ErrUserCancelled) {
		red.Fprintln(w, "[CRITICAL] : cancelled")
		return
	}

	red.Fprintf(w, "[CRITICAL] : %v\n", err)
}
