package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/peterh/liner"
	"gopkg.in/yaml.v2"

	valyxoscript "github.com/SandwichEater577/Valyxo"
)

const (
	appName     = "valyxo"
	historyFile = ".valyxo_history"
	configFile  = ".valyxo.yml"
	promptMain  = ">>> "
	promptCont  = "... "
)

var banner = fmt.Sprintf("ValyxoScript %s REPL\nCtrl+C cancels input, Ctrl+D exits. Type :quit to exit.", valyxoscript.Version)

func red(s string) string   { return "\x1b[31m" + s + "\x1b[0m" }
func green(s string) string { return "\x1b[32m" + s + "\x1b[0m" }

// config holds the optional per-user limits, read from .valyxo.yml in the
// working directory or the home directory (working directory wins).
type config struct {
	MaxIterations int `yaml:"max_iterations"`
	MaxCallDepth  int `yaml:"max_call_depth"`
}

func loadConfig() config {
	var cfg config
	paths := []string{configFile}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, configFile))
	}
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			fmt.Fprintf(os.Stderr, "%s: bad config %s: %v\n", appName, p, err)
			continue
		}
		break
	}
	return cfg
}

func (c config) options() []valyxoscript.Option {
	var opts []valyxoscript.Option
	if c.MaxIterations > 0 {
		opts = append(opts, valyxoscript.WithMaxIterations(c.MaxIterations))
	}
	if c.MaxCallDepth > 0 {
		opts = append(opts, valyxoscript.WithMaxCallDepth(c.MaxCallDepth))
	}
	return opts
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch cmd := os.Args[1]; cmd {
	case "run":
		os.Exit(cmdRun(os.Args[2:]))
	case "repl":
		os.Exit(cmdRepl(os.Args[2:]))
	case "version":
		fmt.Println(valyxoscript.Version)
	case "-h", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", appName, cmd)
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Printf(`ValyxoScript %s

Usage:
  %s run <file.vx> [--vars]   Run a script; --vars dumps globals afterwards.
  %s repl                     Start the interactive REPL.
  %s version                  Print the language version.

Limits can be tuned via %s (max_iterations, max_call_depth).

`, valyxoscript.Version, appName, appName, appName, configFile)
}

// -----------------------------------------------------------------------------
// run
// -----------------------------------------------------------------------------

func cmdRun(args []string) int {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	showVars := fs.Bool("vars", false, "print final variables after the script")
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s run <file.vx> [--vars]\n", appName)
		return 2
	}

	file := fs.Arg(0)
	src, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: cannot read %s: %v\n", appName, file, err)
		return 1
	}

	rt := valyxoscript.NewRuntime(loadConfig().options()...)
	res, runErr := rt.RunProgram(string(src))
	fmt.Print(rt.Output())
	if runErr != nil {
		fmt.Fprintln(os.Stderr, red(valyxoscript.WrapErrorWithSource(runErr, string(src)).Error()))
		return 1
	}
	if *showVars {
		names := make([]string, 0, len(res.Variables))
		for name := range res.Variables {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("%s = %s\n", name, valyxoscript.FormatValue(res.Variables[name]))
		}
	}
	return 0
}

// -----------------------------------------------------------------------------
// repl
// -----------------------------------------------------------------------------

func cmdRepl(_ []string) int {
	fmt.Println(banner)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	rt := valyxoscript.NewRuntime(loadConfig().options()...)
	printed := 0

	for {
		prompt := promptMain
		if rt.Pending() {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			fmt.Println()
			return 0
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, red(err.Error()))
			return 1
		}

		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, ":") {
			switch strings.ToLower(trimmed) {
			case ":quit":
				return 0
			case ":vars":
				vars := rt.Variables()
				names := make([]string, 0, len(vars))
				for name := range vars {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					fmt.Printf("%s = %s\n", name, valyxoscript.FormatValue(vars[name]))
				}
			default:
				fmt.Println("unknown command. Type :quit to exit, :vars to list variables.")
			}
			continue
		}
		if trimmed != "" {
			ln.AppendHistory(line)
		}

		if err := rt.RunLine(line); err != nil {
			fmt.Fprintln(os.Stderr, red(err.Error()))
		}
		out := rt.Output()
		if len(out) > printed {
			fmt.Print(green(out[printed:]))
			printed = len(out)
		}
		if rt.Halted() {
			return 0
		}
	}
}
