// furiview is an interactive inspector for encoded furigana strings. Lines
// accepted with enter are printed to stdout on exit.
package main

import (
	"fmt"
	"os"

	"github.com/jusunglee/furigana/internal/inspect"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
)

func main() {
	if err := mainE(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func mainE() error {
	fs := ff.NewFlagSet("furiview")
	text := fs.StringLong("text", "", "Initial encoded string")

	if err := ff.Parse(fs, os.Args[1:]); err != nil {
		fmt.Printf("%s\n", ffhelp.Flags(fs))
		return fmt.Errorf("parsing flags: %w", err)
	}

	accepted, err := inspect.Run(*text)
	if err != nil {
		return err
	}
	for _, line := range accepted {
		fmt.Println(line)
	}
	return nil
}
