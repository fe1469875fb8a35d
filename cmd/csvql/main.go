package main

import (
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/k0kubun/pp/v3"

	"github.com/freeeve/csvql"
	"github.com/freeeve/csvql/ast"
	"github.com/freeeve/csvql/catalog"
	"github.com/freeeve/csvql/engine"
	"github.com/freeeve/csvql/output"
	"github.com/freeeve/csvql/util"
)

var version string

const defaultQuery = "SELECT * FROM phonebook"

type options struct {
	OutputCSV bool   `short:"o" long:"output-csv" description:"Write the result as CSV instead of a table"`
	DataDir   string `long:"data-dir" description:"Directory of CSV files to load as tables" default:"./data"`
	Debug     bool   `long:"debug" description:"Dump the parsed statement before executing"`
	Help      bool   `long:"help" description:"Show this help"`
	Version   bool   `long:"version" description:"Show this version"`
}

// Return parsed options and the SQL to run
func parseOptions(args []string) (*options, string) {
	var opts options
	parser := flags.NewParser(&opts, flags.None)
	parser.Usage = "[option...] \"SELECT ...\""
	args, err := parser.ParseArgs(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if opts.Help {
		parser.WriteHelp(os.Stdout)
		os.Exit(0)
	}

	if opts.Version {
		fmt.Println(version)
		os.Exit(0)
	}

	query := defaultQuery
	if len(args) == 1 {
		query = args[0]
	} else if len(args) > 1 {
		fmt.Fprintf(os.Stderr, "Multiple queries are given: %v\n\n", args)
		parser.WriteHelp(os.Stderr)
		os.Exit(1)
	}
	return &opts, query
}

func run(opts *options, query string) error {
	stmt, err := csvql.Parse(query)
	if err != nil {
		return err
	}
	if opts.Debug {
		pp.Println(stmt)
	}

	cat, err := catalog.LoadDir(opts.DataDir)
	if err != nil {
		return err
	}

	sel := stmt.(*ast.SelectStmt)
	if opts.OutputCSV {
		return engine.ExecSelect(output.NewCSVSink(os.Stdout), cat, sel)
	}

	buf := output.NewBufferSink()
	if err := engine.ExecSelect(buf, cat, sel); err != nil {
		return err
	}
	fmt.Print(output.RenderTable(buf.Rows))
	return nil
}

func main() {
	util.InitSlog()
	opts, query := parseOptions(os.Args[1:])
	if err := run(opts, query); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
