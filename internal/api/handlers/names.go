package handlers

import (
	"sort"

	"lopf/internal/model"
)

func sortedNames(names []string) []string {
	sort.Strings(names)
	return names
}

func busNames(net *model.Network) []string        { return keysOf(net.Buses) }
func generatorNames(net *model.Network) []string   { return keysOf(net.Generators) }
func storageUnitNames(net *model.Network) []string { return keysOf(net.StorageUnits) }
func storeNames(net *model.Network) []string       { return keysOf(net.Stores) }
func loadNames(net *model.Network) []string        { return keysOf(net.Loads) }
func linkNames(net *model.Network) []string        { return keysOf(net.Links) }

func keysOf[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
