// Command commands writes the interactions server's built-in commands as JSON,
// for use with `cordial commands --file`.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/starshine-sys/cordial/cmd/serve"
	"github.com/starshine-sys/cordial/common/log"
)

func main() {
	var out string
	var compact bool

	flags := pflag.NewFlagSet("commands", pflag.ContinueOnError)
	flags.StringVarP(&out, "out", "o", "commands.json", "file to write commands to, or - for stdout")
	flags.BoolVar(&compact, "compact", false, "don't indent the output")

	if err := flags.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return
		}
		log.Fatal(err)
	}

	var (
		b   []byte
		err error
	)
	if compact {
		b, err = json.Marshal(serve.Commands)
	} else {
		b, err = json.MarshalIndent(serve.Commands, "", "  ")
	}
	if err != nil {
		log.Fatalf("Error encoding commands: %v", err)
	}
	b = append(b, '\n')

	if out == "-" {
		_, _ = os.Stdout.Write(b)
		return
	}

	if err := os.WriteFile(out, b, 0o644); err != nil {
		log.Fatalf("Error writing commands: %v", err)
	}
	fmt.Printf("Wrote %d command(s) to %v\n", len(serve.Commands), out)
}
