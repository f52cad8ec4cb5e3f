// Tanuki CLI - loads, inspects, and runs bytecode modules
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/chazu/tanuki/config"
	"github.com/chazu/tanuki/pkg/bytecode"
	"github.com/chazu/tanuki/vm"
	"github.com/chazu/tanuki/vm/dist"
)

func main() {
	trace := flag.Bool("trace", false, "Log every executed instruction")
	configPath := flag.String("config", "tanuki.toml", "Configuration file")
	load := flag.String("load", "", "Load the named module from the store instead of the demo")
	save := flag.Bool("save", false, "Save the module to the store before running")
	disasm := flag.Bool("disasm", false, "Print a disassembly instead of running")
	symbol := flag.String("symbol", "main", "Entry symbol to run")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: tanuki [options]\n\n")
		fmt.Fprintf(os.Stderr, "Runs the built-in demo module, or a module from the store.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  tanuki                    # Run the demo\n")
		fmt.Fprintf(os.Stderr, "  tanuki -disasm            # Show the demo's instructions\n")
		fmt.Fprintf(os.Stderr, "  tanuki -save              # Store the demo as 'demo'\n")
		fmt.Fprintf(os.Stderr, "  tanuki -load demo -trace  # Reload it with instruction logging\n")
	}
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *trace {
		cfg.Engine.Trace = true
	}
	if cfg.Engine.Trace {
		commonlog.Configure(2, nil)
	}

	module := demoModule()
	if *load != "" {
		store, err := dist.OpenStore(cfg.Store.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		m, ok, err := store.Get(*load)
		store.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if !ok {
			fmt.Fprintf(os.Stderr, "Error: no module %q in %s\n", *load, cfg.Store.Path)
			os.Exit(1)
		}
		module = m
	}

	if *save {
		store, err := dist.OpenStore(cfg.Store.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		err = store.Put(module)
		store.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		hash, err := dist.ModuleHash(module)
		if err == nil {
			fmt.Printf("Saved %q (%x)\n", module.Name, hash[:8])
		}
	}

	if *disasm {
		fmt.Print(bytecode.DisassembleWithName(module.Code, module.Name))
		return
	}

	engine := cfg.NewEngine()
	if err := engine.AddModule(module); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	engine.ResolveExternals()

	moduleID, _ := engine.Lookup(module.Name)
	symbolID, ok := module.Symbol(*symbol)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: module %q has no symbol %q\n", module.Name, *symbol)
		os.Exit(1)
	}
	if err := engine.Run(moduleID, symbolID); err != nil {
		fmt.Fprintf(os.Stderr, "Fault: %v\n", err)
		os.Exit(1)
	}
}

// demoModule squares a handful of small constants via a helper symbol and
// prints each result.
func demoModule() *vm.Module {
	var code []bytecode.Word
	mainOffset := uint32(len(code))
	for i := byte(bytecode.StackConst1); i <= bytecode.StackConst4; i++ {
		code = append(code,
			bytecode.Stack(i),
			bytecode.Function(bytecode.FnCallC), 1,
			bytecode.Sys(bytecode.SysPrintU64),
		)
	}
	code = append(code,
		bytecode.Stack(bytecode.StackConst8),
		bytecode.Function(bytecode.FnCallC), 1,
		bytecode.Sys(bytecode.SysPrintU64),
		bytecode.Sys(bytecode.SysHalt),
	)
	squareOffset := uint32(len(code))
	code = append(code,
		bytecode.Stack(bytecode.StackDupe1),
		bytecode.Math(bytecode.MathMul),
		bytecode.Function(bytecode.FnReturn),
	)
	return vm.NewModule("demo",
		[]string{"main", "square"},
		nil,
		[]vm.LocalSymbol{
			{NameID: 0, CodeOffset: mainOffset},
			{NameID: 1, CodeOffset: squareOffset},
		},
		nil,
		code,
	)
}
