// params_dump prints the merged parameter records as JSON. It reads the
// locations from the PANO_* environment variables; -dir and -set adjust them.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/dixieflatline76/Pano/pkg/params"
)

// overrideFlag collects repeated -set record.key=value arguments.
type overrideFlag struct {
	ov *params.Overrides
}

func (f overrideFlag) String() string { return "" }

func (f overrideFlag) Set(s string) error {
	return f.ov.ParseOverride(s)
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, out io.Writer) error {
	var ov params.Overrides
	fs := flag.NewFlagSet("params_dump", flag.ContinueOnError)
	dir := fs.String("dir", "", "parameter directory (overrides PANO_PARAMS_DIR)")
	fs.Var(overrideFlag{ov: &ov}, "set", "override record.key=value, repeatable (records: hp, evaluation, run)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	loc, err := params.LocationsFromEnv()
	if err != nil {
		return err
	}
	if *dir != "" {
		loc.Dir = *dir
	}

	set, err := params.Load(loc, ov)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding parameters: %w", err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}
