// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ResourceType classifies a resource line of a normative catalog entry.
type ResourceType string

const (
	ResourceLabor    ResourceType = "labor"
	ResourceMaterial ResourceType = "material"
	ResourceMachine  ResourceType = "machine"
)

// Resource is one resource line of a catalog entry: the labor, material,
// or machine consumption per unit of work.
type Resource struct {
	Type ResourceType `json:"type" yaml:"type"`
	Name string       `json:"name" yaml:"name"`
	Unit string       `json:"unit" yaml:"unit"`

	// QuantityPerUnit is the consumption per unit of work. Nil when the
	// source norm declares the resource without a usable figure.
	QuantityPerUnit *float64 `json:"quantity_per_unit" yaml:"quantity_per_unit"`
}

// CatalogEntry is a normative reference record describing a standard unit
// of construction work. Entries are owned by the catalog store and
// read-only to the pipeline.
type CatalogEntry struct {
	// Code is the unique normative code (e.g. "ГЭСН 16-02-005-01").
	Code string `json:"code" yaml:"code"`

	// Name is the normative work description.
	Name string `json:"name" yaml:"name"`

	// Unit is the normative unit of measure.
	Unit string `json:"unit" yaml:"unit"`

	// Section is the catalog section code used for filtered retrieval.
	Section string `json:"section,omitempty" yaml:"section,omitempty"`

	// Parameters holds declared technical parameters (e.g. "диаметр" → "110").
	Parameters map[string]string `json:"parameters,omitempty" yaml:"parameters,omitempty"`

	// Resources lists the per-unit resource consumption lines.
	Resources []Resource `json:"resources,omitempty" yaml:"resources,omitempty"`

	// Composition is the free-text work composition from the source norm.
	Composition string `json:"composition,omitempty" yaml:"composition,omitempty"`
}

// LaborResources returns the labor-type resource lines that carry a
// usable per-unit quantity.
func (e CatalogEntry) LaborResources() []Resource {
	var out []Resource
	for _, r := range e.Resources {
		if r.Type == ResourceLabor && r.QuantityPerUnit != nil {
			out = append(out, r)
		}
	}
	return out
}
