// README: Location value object; resolvable label with optional coordinates.
package types

// Location is a named place. Resolved is true when a geocoder filled in
// coordinates; otherwise the label is carried through as-is.
type Location struct {
	Label    string
	Lat      float64
	Lng      float64
	Resolved bool
}
