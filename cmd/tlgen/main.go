// tlgen drives the tlschema generator against a .tl schema file,
// writing the generated Go source to an output path (spec §6 Schema
// grammar, the core's schema-generator external entry point).
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/cvsouth/mtproto-go/tlschema"
)

func main() {
	schemaPath := flag.String("schema", "", "path to a .tl schema file")
	outPath := flag.String("out", "", "path to write generated Go source")
	pkgName := flag.String("package", "gen", "package name for generated source")
	flag.Parse()

	logger := slog.Default()

	if *schemaPath == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: tlgen -schema=<path.tl> -out=<path.go> [-package=gen]")
		os.Exit(2)
	}

	if err := run(*schemaPath, *outPath, *pkgName, logger); err != nil {
		logger.Error("tlgen failed", "error", err)
		os.Exit(1)
	}
}

func run(schemaPath, outPath, pkgName string, logger *slog.Logger) error {
	src, err := os.ReadFile(schemaPath)
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}

	tokens, err := tlschema.Lex(string(src))
	if err != nil {
		return fmt.Errorf("lex schema: %w", err)
	}

	items, layer, err := tlschema.Parse(tokens)
	if err != nil {
		return fmt.Errorf("parse schema: %w", err)
	}
	logger.Info("parsed schema", "constructors", len(items), "layer", layer)

	if err := tlschema.CheckTypeParamArity(items); err != nil {
		return fmt.Errorf("check type parameters: %w", err)
	}

	analysis, err := tlschema.Analyze(items)
	if err != nil {
		return fmt.Errorf("analyze schema: %w", err)
	}

	generated, err := tlschema.Generate(pkgName, items, analysis)
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}

	if err := os.WriteFile(outPath, []byte(generated), 0644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	logger.Info("wrote generated source", "path", outPath)
	return nil
}
