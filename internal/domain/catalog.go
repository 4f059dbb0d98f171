package domain

import "github.com/samber/lo"

// UnitOption is one selectable entry of a unit catalog.
type UnitOption struct {
	Id   UnitId
	Name string
}

// UnitKindOption describes a unit kind in the kind selector.
type UnitKindOption struct {
	Kind  UnitKind
	Label string
}

var UnitKinds = []UnitKindOption{
	{Kind: UnitKindCentral, Label: "Centrale"},
	{Kind: UnitKindGroupement, Label: "Groupement"},
}

// unitCatalog maps each kind to its own id space. The lists are disjoint, which
// is why changing the kind must drop a previously selected id.
var unitCatalog = map[UnitKind][]UnitOption{
	UnitKindCentral: {
		{Id: 101, Name: "Centrale A"},
		{Id: 102, Name: "Centrale B"},
		{Id: 103, Name: "Centrale C"},
	},
	UnitKindGroupement: {
		{Id: 201, Name: "Groupement de production Rades"},
		{Id: 202, Name: "Groupement de production Nord"},
		{Id: 203, Name: "Groupement de production Sud"},
		{Id: 204, Name: "Groupement de production Sousse"},
		{Id: 205, Name: "Énergie renouvelable"},
	},
}

// OptionsFor returns the catalog of kind, or nil for an unknown or empty kind.
func OptionsFor(kind UnitKind) []UnitOption {
	return unitCatalog[kind]
}

func HasOption(kind UnitKind, id UnitId) bool {
	return lo.ContainsBy(unitCatalog[kind], func(o UnitOption) bool { return o.Id == id })
}

func OptionName(kind UnitKind, id UnitId) (string, bool) {
	opt, ok := lo.Find(unitCatalog[kind], func(o UnitOption) bool { return o.Id == id })
	return opt.Name, ok
}

func KindLabel(kind UnitKind) string {
	opt, ok := lo.Find(UnitKinds, func(o UnitKindOption) bool { return o.Kind == kind })
	if !ok {
		return ""
	}
	return opt.Label
}
