package entity

// Location is a fixed drop point on the scrim map. X and Y are map
// coordinates used only for rendering.
type Location struct {
	Name string
	X    int
	Y    int
}
