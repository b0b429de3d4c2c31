// Command lzend computes the LZ-End parsing of a file and reports the
// number of phrases.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/pdinklag/lzend"
)

func main() {
	app := &cli.App{
		Name:      "lzend",
		Usage:     "compute the LZ-End parsing of a file",
		ArgsUsage: "FILE",
		Action:    run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowAppHelp(c)
		return cli.Exit("lzend: missing FILE argument", 1)
	}
	data, err := os.ReadFile(c.Args().First())
	if err != nil {
		return fmt.Errorf("lzend: %w", err)
	}

	cfg := lzend.ParserConfig{Verbose: true}
	t0 := time.Now()
	parsing, err := cfg.Parse(data)
	if err != nil {
		return err
	}
	fmt.Printf("-> z=%d (%d ms)\n", len(parsing), time.Since(t0).Milliseconds())
	return nil
}
