package storage

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/buildwise/buildwise/pkg/parts"
)

// ParseSeed reads components from a seed document. Three layouts are accepted:
// a bare array, {"components": [...]}, or an object keyed by category whose
// values are arrays. Category-specific attributes may sit at the top level of
// an entry or inside its "specs" object.
func ParseSeed(data []byte) ([]parts.Component, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("seed is not valid JSON")
	}
	doc := gjson.ParseBytes(data)

	var out []parts.Component
	var err error
	add := func(entry gjson.Result, category string) bool {
		var c parts.Component
		c, err = parseEntry(entry, category)
		if err != nil {
			return false
		}
		out = append(out, c)
		return true
	}

	switch {
	case doc.IsArray():
		doc.ForEach(func(_, v gjson.Result) bool { return add(v, "") })
	case doc.Get("components").IsArray():
		doc.Get("components").ForEach(func(_, v gjson.Result) bool { return add(v, "") })
	case doc.IsObject():
		doc.ForEach(func(k, list gjson.Result) bool {
			cat, ok := parts.ParseCategory(k.String())
			if !ok || !list.IsArray() {
				return true
			}
			list.ForEach(func(_, v gjson.Result) bool { return add(v, string(cat)) })
			return err == nil
		})
	default:
		return nil, fmt.Errorf("seed must be an array or an object")
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func parseEntry(v gjson.Result, category string) (parts.Component, error) {
	attr := func(keys ...string) gjson.Result {
		for _, k := range keys {
			if r := v.Get(k); r.Exists() {
				return r
			}
			if r := v.Get("specs." + k); r.Exists() {
				return r
			}
		}
		return gjson.Result{}
	}

	if category == "" {
		category = v.Get("category").String()
	}
	cat, ok := parts.ParseCategory(category)
	if !ok {
		return parts.Component{}, fmt.Errorf("component %q: unknown category %q", v.Get("id").String(), category)
	}

	c := parts.Component{
		ID:               v.Get("id").String(),
		Category:         cat,
		Name:             v.Get("name").String(),
		Manufacturer:     attr("manufacturer", "brand").String(),
		Price:            v.Get("price").Float(),
		Available:        true,
		Socket:           parts.Socket(attr("socket").String()),
		Chipset:          attr("chipset").String(),
		FormFactor:       attr("form_factor", "formFactor").String(),
		Wattage:          int(attr("wattage").Int()),
		CapacityGB:       int(attr("capacity_gb", "capacity").Int()),
		TDP:              int(attr("tdp").Int()),
		PerformanceScore: attr("performance_score", "performanceScore").Float(),
		SingleCoreScore:  attr("single_core_score", "singleCoreScore").Float(),
		MultiCoreScore:   attr("multi_core_score", "multiCoreScore").Float(),
		BundledCooler:    attr("bundled_cooler", "includesCooler").Bool(),
		PCIeX16Slots:     int(attr("pcie_x16_slots", "pcieX16Slots").Int()),
	}
	if cat == parts.Storage {
		c.StorageType = parts.StorageType(attr("storage_type", "type").String())
	}
	if a := v.Get("available"); a.Exists() {
		c.Available = a.Bool()
	}
	for _, m := range stringList(attr("memory_types", "memory_type", "memoryType")) {
		c.MemoryTypes = append(c.MemoryTypes, parts.MemoryType(m))
	}
	for _, s := range stringList(attr("cooler_sockets", "socket_compatibility")) {
		c.CoolerSockets = append(c.CoolerSockets, parts.Socket(s))
	}

	if c.ID == "" {
		return c, fmt.Errorf("%s component %q has no id", cat, c.Name)
	}
	if c.Price < 0 {
		return c, fmt.Errorf("component %s: negative price", c.ID)
	}
	return c, nil
}

// stringList accepts either a JSON array of strings or one comma separated string.
func stringList(r gjson.Result) []string {
	if !r.Exists() {
		return nil
	}
	if r.IsArray() {
		var out []string
		for _, x := range r.Array() {
			if s := strings.TrimSpace(x.String()); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return splitList(r.String())
}
