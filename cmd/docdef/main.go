// Command docdef validates a template file and writes the document definition
// the PDF rendering engine consumes.
//
//	docdef [-o out.json] [-var key=value]... [-raster-qr] template.json
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"docdesigner/internal/export"
	"docdesigner/internal/models"
)

type varsFlag map[string]string

func (v varsFlag) String() string {
	parts := make([]string, 0, len(v))
	for k, val := range v {
		parts = append(parts, k+"="+val)
	}
	return strings.Join(parts, ",")
}

func (v varsFlag) Set(value string) error {
	key, val, ok := strings.Cut(value, "=")
	if !ok || strings.TrimSpace(key) == "" {
		return errors.New("expected key=value")
	}
	v[strings.TrimSpace(key)] = val
	return nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("docdef", flag.ContinueOnError)
	fs.SetOutput(stderr)
	out := fs.String("o", "", "write the definition to this file instead of stdout")
	raster := fs.Bool("raster-qr", false, "render QR codes as PNG images")
	vars := varsFlag{}
	fs.Var(vars, "var", "bind a variable element (repeatable key=value)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "usage: docdef [-o out.json] [-var key=value]... template.json")
		return 2
	}

	fail := color.New(color.FgRed, color.Bold)
	warn := color.New(color.FgYellow)
	ok := color.New(color.FgGreen)

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fail.Fprintf(stderr, "read template: %v\n", err)
		return 1
	}
	tpl, err := models.ParseTemplate(data)
	if err != nil {
		fail.Fprintf(stderr, "invalid template: %v\n", err)
		return 1
	}
	for _, ref := range tpl.Document.DanglingReferences() {
		holder := ref.HolderID
		if holder == "" {
			holder = "root"
		}
		warn.Fprintf(stderr, "dangling reference %s in %s\n", ref.ChildID, holder)
	}

	def := export.Export(tpl.Document, export.WithVariables(vars), export.WithRasterQR(*raster))
	payload, err := json.MarshalIndent(def, "", "  ")
	if err != nil {
		fail.Fprintf(stderr, "encode definition: %v\n", err)
		return 1
	}
	payload = append(payload, '\n')

	if *out == "" {
		if _, err := stdout.Write(payload); err != nil {
			return 1
		}
		return 0
	}
	if err := os.WriteFile(*out, payload, 0o644); err != nil {
		fail.Fprintf(stderr, "write %s: %v\n", *out, err)
		return 1
	}
	ok.Fprintf(stderr, "wrote %s (%s, %d root elements)\n", *out, tpl.Metadata.Name, len(tpl.Document.RootElementIDs))
	return 0
}
