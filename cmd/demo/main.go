package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"

	"lopf/internal/model"
	"lopf/internal/scenario"
	"lopf/internal/solver"
	"lopf/internal/solver/refsolver"
	"lopf/internal/topology"
)

// Demo builds one of the bundled example networks in code, solves it with
// the reference simplex backend, and prints the resulting dispatch.
func main() {
	name := flag.String("scenario", "two-bus-line", "Bundled scenario to run (see lopf scenarios)")
	flag.Parse()

	b, ok := scenario.ByName(*name)
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown scenario %q; known scenarios:\n", *name)
		for _, s := range scenario.All() {
			fmt.Fprintf(os.Stderr, "  %-16s %s\n", s.Name, s.Description)
		}
		os.Exit(2)
	}

	net, snapshots := b.Build()
	fmt.Printf("scenario=%s formulation=%s buses=%d snapshots=%d\n", b.Name, b.Formulation, len(net.Buses), len(snapshots))

	err := solver.Run(context.Background(), net, snapshots, solver.RunOptions{
		Formulation: b.Formulation,
		Topology:    topology.Reference{},
		Solver:      refsolver.New(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "solve failed: %v\n", err)
		os.Exit(1)
	}

	printDispatch(net, snapshots)
}

func printDispatch(net *model.Network, snapshots []model.Snapshot) {
	names := make([]string, 0, len(net.Generators))
	for name := range net.Generators {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("\ngenerators:")
	for _, name := range names {
		g := net.Generators[name]
		fmt.Printf("  %-12s bus=%-4s p_nom_opt=%8.2f\n", name, g.Bus, g.Result.PNomOpt)
		for _, sn := range snapshots {
			fmt.Printf("    %-8s p=%8.3f\n", sn, g.Result.P.At(sn, 0))
		}
	}

	busNames := make([]string, 0, len(net.Buses))
	for name := range net.Buses {
		busNames = append(busNames, name)
	}
	sort.Strings(busNames)

	fmt.Println("\nbuses:")
	for _, name := range busNames {
		b := net.Buses[name]
		for _, sn := range snapshots {
			fmt.Printf("  %-4s %-8s p=%8.3f v_ang=%8.4f marginal_price=%10.4f\n",
				name, sn, b.Result.P.At(sn, 0), b.Result.VAng.At(sn, 0), b.Result.MarginalPrice.At(sn, 0))
		}
	}

	if len(net.StorageUnits) > 0 {
		fmt.Println("\nstorage units:")
		suNames := make([]string, 0, len(net.StorageUnits))
		for name := range net.StorageUnits {
			suNames = append(suNames, name)
		}
		sort.Strings(suNames)
		for _, name := range suNames {
			su := net.StorageUnits[name]
			for _, sn := range snapshots {
				fmt.Printf("  %-10s %-8s p=%8.3f soc=%8.3f\n", name, sn, su.Result.P.At(sn, 0), su.Result.StateOfCharge.At(sn, 0))
			}
		}
	}
}
