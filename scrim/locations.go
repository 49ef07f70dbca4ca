package scrim

import "scrimbot/entity"

// Locations is the fixed drop-point catalog. Coordinates are map pixels,
// used only when rendering the slot map.
var Locations = []entity.Location{
	{Name: "JHARNA", X: 396, Y: 122},
	{Name: "COMPOUND", X: 462, Y: 236},
	{Name: "VYAPAAR CENTER", X: 627, Y: 245},
	{Name: "JATAYU BAZAAR", X: 856, Y: 281},
	{Name: "GUFA", X: 296, Y: 292},
	{Name: "NIUAAS", X: 182, Y: 287},
	{Name: "URJA VALLEY", X: 155, Y: 498},
	{Name: "QUARRY", X: 286, Y: 469},
	{Name: "KOLAR", X: 129, Y: 649},
	{Name: "STORAGE", X: 137, Y: 744},
	{Name: "DATA FARM", X: 186, Y: 895},
	{Name: "GURUKUL", X: 325, Y: 836},
	{Name: "VIKRAM LABS", X: 442, Y: 940},
	{Name: "PRIME SETU", X: 467, Y: 794},
	{Name: "GHERA", X: 340, Y: 657},
	{Name: "REFINERY", X: 726, Y: 457},
	{Name: "SHRINE", X: 434, Y: 453},
	{Name: "NAKA", X: 426, Y: 588},
	{Name: "SARISKA", X: 497, Y: 652},
	{Name: "TRIKON", X: 649, Y: 967},
	{Name: "LOK TERMINAL", X: 617, Y: 867},
	{Name: "MOTHER TREE", X: 771, Y: 861},
	{Name: "OBRA NAGAR", X: 805, Y: 704},
	{Name: "CHAR MARG", X: 754, Y: 637},
	{Name: "VIHAR COMPLEX", X: 659, Y: 610},
	{Name: "HAVELI", X: 806, Y: 378},
	{Name: "AIRAVAT FOUNDRY", X: 941, Y: 605},
}

// LocationByName looks a drop point up in the catalog.
func LocationByName(name string) (entity.Location, bool) {
	for _, l := range Locations {
		if l.Name == name {
			return l, true
		}
	}

	return entity.Location{}, false
}
