//go:build js && wasm

// Command wasm exposes the query engine to JavaScript. The catalog is
// fixed at build time from the embedded CSV files.
//
// Exported globals:
//
//	run_query(src)  -> {result: string} or {error: string}
//	list_table()    -> array of table names
package main

import (
	"syscall/js"

	"github.com/freeeve/csvql"
	"github.com/freeeve/csvql/catalog"
	"github.com/freeeve/csvql/util"
)

var cat catalog.Catalog

func runQuery(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return map[string]any{"error": "run_query needs a SQL string"}
	}
	res, err := csvql.RenderQuery(cat, args[0].String())
	if err != nil {
		return map[string]any{"error": err.Error()}
	}
	return map[string]any{"result": res}
}

func listTable(this js.Value, args []js.Value) any {
	names := cat.Names()
	out := make([]any, len(names))
	for i, name := range names {
		out[i] = name
	}
	return out
}

func main() {
	util.InitSlog()
	var err error
	cat, err = csvql.EmbeddedCatalog()
	if err != nil {
		panic(err)
	}
	js.Global().Set("run_query", js.FuncOf(runQuery))
	js.Global().Set("list_table", js.FuncOf(listTable))
	select {}
}
