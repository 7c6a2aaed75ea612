package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"lopf/internal/api/handlers"
	"lopf/internal/config"
	"lopf/internal/model"
	"lopf/internal/opf"
	"lopf/internal/scenario"
	"lopf/internal/solver"
	"lopf/internal/solver/refsolver"
	"lopf/internal/topology"
)

const defaultOracleSOCSteps = 200

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "run":
		cmdRun(os.Args[2:])
	case "scenarios":
		cmdScenarios(os.Args[2:])
	case "validate":
		cmdValidate(os.Args[2:])
	case "oracle":
		cmdOracle(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  lopf run --config scenario.yaml --out results.json")
	fmt.Println("  lopf run --scenario two-bus-line --out results.json")
	fmt.Println("  lopf scenarios")
	fmt.Println("  lopf validate --config scenario.yaml")
	fmt.Println("  lopf oracle --config scenario.yaml --unit battery0 --prices prices.json")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - exactly one of --config or --scenario selects the network to solve")
	fmt.Println("  - the LP is solved with the bundled reference simplex backend")
	fmt.Println("  - oracle reports a perfect-foresight upper bound for one storage unit,")
	fmt.Println("    useful as a sanity check against the LP's reported dispatch value")
}

func cmdValidate(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to a YAML scenario config")
	_ = fs.Parse(args)

	if *cfgPath == "" {
		fmt.Fprintln(os.Stderr, "--config is required")
		os.Exit(2)
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Printf("invalid: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("valid: %d buses, %d generators, %d snapshots, formulation=%s\n",
		len(cfg.Network.Buses), len(cfg.Network.Generators), len(cfg.Network.Snapshots), cfg.Formulation())
}

func cmdOracle(args []string) {
	fs := flag.NewFlagSet("oracle", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to a YAML scenario config")
	unit := fs.String("unit", "", "Storage unit name to bound")
	pricesPath := fs.String("prices", "", "Path to a JSON object mapping snapshot name to price ($/MWh)")
	_ = fs.Parse(args)

	if *cfgPath == "" || *unit == "" || *pricesPath == "" {
		fmt.Fprintln(os.Stderr, "--config, --unit, and --prices are all required")
		os.Exit(2)
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		panic(err)
	}
	net, err := cfg.Network.ToNetwork()
	if err != nil {
		panic(err)
	}
	if _, ok := net.StorageUnits[*unit]; !ok {
		fmt.Fprintf(os.Stderr, "storage unit %q not found\n", *unit)
		os.Exit(2)
	}

	raw, err := os.ReadFile(*pricesPath)
	if err != nil {
		panic(err)
	}
	var byName map[string]float64
	if err := json.Unmarshal(raw, &byName); err != nil {
		panic(err)
	}
	prices := make(map[model.Snapshot]float64, len(byName))
	for name, price := range byName {
		prices[model.Snapshot(name)] = price
	}

	bound, err := opf.OraclePerfectForesight(net, net.Snapshots, *unit, prices, defaultOracleSOCSteps)
	if err != nil {
		panic(err)
	}
	fmt.Printf("perfect-foresight upper bound for %s: %.2f\n", *unit, bound)
}

func cmdRun(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to a YAML scenario config")
	scenarioName := fs.String("scenario", "", "Name of a bundled example scenario")
	outPath := fs.String("out", "", "Optional path to write JSON results")
	rejectSubOptimal := fs.Bool("reject-suboptimal", false, "Treat a sub-optimal stop as a hard error")
	_ = fs.Parse(args)

	if (*cfgPath == "") == (*scenarioName == "") {
		fmt.Fprintln(os.Stderr, "exactly one of --config or --scenario is required")
		os.Exit(2)
	}

	var (
		net         *model.Network
		snapshots   []model.Snapshot
		formulation opf.Formulation
	)

	runOpts := solver.RunOptions{
		Topology:         topology.Reference{},
		Solver:           refsolver.New(),
		RejectSubOptimal: *rejectSubOptimal,
	}

	if *cfgPath != "" {
		cfg, err := config.Load(*cfgPath)
		if err != nil {
			panic(err)
		}
		n, err := cfg.Network.ToNetwork()
		if err != nil {
			panic(err)
		}
		net = n
		snapshots = n.Snapshots
		formulation = cfg.Formulation()
		runOpts.Formulation = formulation
		runOpts.PTDFTolerance = cfg.Solver.PTDFTolerance
		runOpts.SkipPre = cfg.Solver.SkipPre
	} else {
		b, ok := scenario.ByName(*scenarioName)
		if !ok {
			fmt.Fprintf(os.Stderr, "unknown scenario %q\n", *scenarioName)
			os.Exit(2)
		}
		net, snapshots = b.Build()
		formulation = b.Formulation
		runOpts.Formulation = formulation
	}

	if err := solver.Run(context.Background(), net, snapshots, runOpts); err != nil {
		panic(err)
	}

	fmt.Printf("solved: formulation=%s buses=%d snapshots=%d\n", formulation, len(net.Buses), len(snapshots))

	if *outPath != "" {
		out := handlers.BuildLOPFResponse(net, formulation)
		if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
			panic(err)
		}
		raw, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			panic(err)
		}
		if err := os.WriteFile(*outPath, raw, 0o644); err != nil {
			panic(err)
		}
		fmt.Printf("wrote results to %s\n", *outPath)
	}
}

func cmdScenarios(args []string) {
	for _, b := range scenario.All() {
		fmt.Printf("%-16s %-12s %s\n", b.Name, b.Formulation, b.Description)
	}
}
