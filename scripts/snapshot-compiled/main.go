// Command snapshot-compiled writes the serialized compiled representation of
// a form, the same bytes the cache stores, so payload changes show up in
// review.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-formidable"
	"github.com/goliatone/go-formidable/pkg/model"
)

func main() {
	var (
		sourcePath = flag.String("source", "examples/http/templates/signup.html", "form markup to compile")
		outputPath = flag.String("output", "pkg/model/testdata/compiled.json", "output path for the serialized representation")
	)
	flag.Parse()

	markup, err := os.ReadFile(*sourcePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read markup: %v\n", err)
		os.Exit(1)
	}

	compiled, err := formidable.NewParser().Parse(context.Background(), string(markup))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to compile form: %v\n", err)
		os.Exit(1)
	}

	payload, err := model.Encode(compiled)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode form: %v\n", err)
		os.Exit(1)
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, payload, "", "  "); err != nil {
		fmt.Fprintf(os.Stderr, "failed to indent payload: %v\n", err)
		os.Exit(1)
	}
	pretty.WriteByte('\n')

	if err := os.WriteFile(*outputPath, pretty.Bytes(), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write snapshot: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote compiled form snapshot to %s\n", *outputPath)
}
