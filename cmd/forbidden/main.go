// Command forbidden builds forbidden lists and validates descriptions offline,
// against the same configuration the server uses.
//
// Usage:
//
//	forbidden [--config path] demo
//	forbidden [--config path] list [--k 16] word...
//	forbidden [--config path] check --word w --description d [--forbidden f]... [--mode m]
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/heartmarshall/taboo-core/internal/app"
	"github.com/heartmarshall/taboo-core/internal/config"
	"github.com/heartmarshall/taboo-core/internal/domain"
	"github.com/heartmarshall/taboo-core/internal/validator"
)

// demoSamples are descriptions checked by the demo command, per target word.
var demoSamples = []struct {
	word         string
	descriptions []string
}{
	{"bank", []string{
		"A place for money deposit and savings",
		"Institution handling loans for customers",
		"Building with columns next to the museum",
	}},
	{"bat", []string{
		"A flying mammal that hunts insects at night",
		"Wooden club used in baseball",
		"Small animal sleeping in caves",
	}},
	{"volcano", []string{
		"A mountain that erupts with ash and lava",
		"Large hill near the coast",
		"A geological vent releasing molten rock",
	}},
}

var checkModes = []validator.Mode{validator.ModeDeterministic, validator.ModeSemantic, validator.ModeHybrid}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cliApp := &cli.App{
		Name:    "forbidden",
		Usage:   "build forbidden lists and validate descriptions offline",
		Version: app.BuildVersion(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the YAML config (overrides CONFIG_PATH)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "print results as JSON lines",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "demo",
				Usage:  "build lists for sample words and check sample descriptions in every mode",
				Action: demoCommand,
			},
			{
				Name:      "list",
				Usage:     "print the forbidden list of each word",
				ArgsUsage: "word...",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "k", Value: -1, Usage: "list size (-1 = configured default)"},
				},
				Action: listCommand,
			},
			{
				Name:  "check",
				Usage: "validate one description",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "word", Required: true},
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Required: true},
					&cli.StringSliceFlag{Name: "forbidden", Aliases: []string{"f"}, Usage: "forbidden terms (default: generated)"},
					&cli.StringFlag{Name: "mode", Usage: "deterministic, semantic or hybrid (default: all)"},
				},
				Action: checkCommand,
			},
		},
	}

	if err := cliApp.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadEngine wires and builds the engine. Logs go to stderr so stdout only
// carries results.
func loadEngine(c *cli.Context) (*app.Engine, error) {
	if path := c.String("config"); path != "" {
		if err := os.Setenv("CONFIG_PATH", path); err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := app.NewLogger(cfg.Log)

	engine, err := app.NewEngine(c.Context, cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := engine.Build(c.Context); err != nil {
		engine.Close()
		return nil, err
	}
	logger.Info("index ready", slog.Int("terms", engine.Index.Len()))
	return engine, nil
}

func listCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("list: at least one word is required")
	}
	engine, err := loadEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	out := newPrinter(c.App.Writer, c.Bool("json"))
	for _, word := range c.Args().Slice() {
		list, err := engine.Generator.Generate(c.Context, word, c.Int("k"))
		if err != nil {
			return fmt.Errorf("generate %q: %w", word, err)
		}
		out.list(word, list)
	}
	return nil
}

func checkCommand(c *cli.Context) error {
	modes := checkModes
	if m := c.String("mode"); m != "" {
		mode, err := validator.ParseMode(m)
		if err != nil {
			return err
		}
		modes = []validator.Mode{mode}
	}

	engine, err := loadEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	word := c.String("word")
	forbidden := c.StringSlice("forbidden")
	if !c.IsSet("forbidden") {
		if forbidden, err = engine.Generator.Generate(c.Context, word, -1); err != nil {
			return fmt.Errorf("generate %q: %w", word, err)
		}
	}

	out := newPrinter(c.App.Writer, c.Bool("json"))
	out.list(word, forbidden)
	for _, mode := range modes {
		out.verdict(word, c.String("description"), mode,
			engine.Validator.Check(c.Context, word, c.String("description"), forbidden, mode))
	}
	return nil
}

func demoCommand(c *cli.Context) error {
	engine, err := loadEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	out := newPrinter(c.App.Writer, c.Bool("json"))
	for _, sample := range demoSamples {
		list, err := engine.Generator.Generate(c.Context, sample.word, -1)
		if err != nil {
			return fmt.Errorf("generate %q: %w", sample.word, err)
		}
		out.list(sample.word, list)

		for _, d := range sample.descriptions {
			for _, mode := range checkModes {
				out.verdict(sample.word, d, mode, engine.Validator.Check(c.Context, sample.word, d, list, mode))
			}
		}
	}
	return nil
}

type printer struct {
	w    io.Writer
	json bool
	enc  *json.Encoder
}

func newPrinter(w io.Writer, asJSON bool) *printer {
	return &printer{w: w, json: asJSON, enc: json.NewEncoder(w)}
}

func (p *printer) list(word string, list []string) {
	if p.json {
		_ = p.enc.Encode(map[string]any{"word": word, "forbidden": list})
		return
	}
	fmt.Fprintf(p.w, "=== %s ===\n", strings.ToUpper(word))
	for _, t := range list {
		fmt.Fprintf(p.w, "  - %s\n", t)
	}
}

func (p *printer) verdict(word, description string, mode validator.Mode, v domain.Verdict) {
	if p.json {
		_ = p.enc.Encode(map[string]any{
			"word":        word,
			"description": description,
			"mode":        string(mode),
			"valid":       v.Valid,
			"violations":  v.Violations,
		})
		return
	}
	fmt.Fprintf(p.w, "%-13s %q valid=%t", mode, description, v.Valid)
	for _, f := range v.Violations {
		fmt.Fprintf(p.w, " [%s: %s]", f.Rule, f.Span)
	}
	fmt.Fprintln(p.w)
}
