// Command ffcodec serializes a column of unsigned integers read from the
// command line, reporting which codec the selector picked and round-tripping
// every value back through the dynamic reader as a sanity check.
package main

import (
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/mewkiz/fastfield"
	"github.com/mewkiz/fastfield/dynamic"
	"github.com/mewkiz/fastfield/internal/ownedbytes"
	"github.com/pkg/errors"
)

func main() {
	values := flag.String("values", "", "comma-separated column of u64 values")
	verbose := flag.Bool("v", false, "print every decoded value, not just a summary")
	flag.Parse()

	column, err := parseValues(*values)
	if err != nil {
		log.Fatalf("ffcodec: %v", err)
	}
	if err := run(column, *verbose); err != nil {
		log.Fatalf("ffcodec: %v", err)
	}
}

func parseValues(s string) ([]uint64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	fields := strings.Split(s, ",")
	values := make([]uint64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseUint(strings.TrimSpace(f), 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing value %q", f)
		}
		values[i] = v
	}
	return values, nil
}

func run(values []uint64, verbose bool) error {
	body, err := dynamic.SerializeColumnToBytes(values)
	if err != nil {
		return errors.Wrap(err, "serializing column")
	}
	codec := dynamic.Select(values, fastfield.ComputeStats(values))
	fmt.Printf("codec=%s\n", codec.Name())
	fmt.Printf("serialized %d value(s) into %d byte(s)\n", len(values), len(body))

	reader, err := dynamic.OpenColumn(ownedbytes.New(body))
	if err != nil {
		return errors.Wrap(err, "opening column")
	}
	fmt.Printf("num_vals=%d min_value=%d max_value=%d\n", reader.NumVals(), reader.MinValue(), reader.MaxValue())

	for ord, want := range values {
		got := reader.Get(uint64(ord))
		if got != want {
			return errors.Errorf("round trip: value %d decoded as %d, want %d", ord, got, want)
		}
		if verbose {
			fmt.Printf("%d: %d\n", ord, got)
		}
	}
	return nil
}
