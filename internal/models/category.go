package models

// CanonicalCategories is the display order used when grouping the menu.
// Products may carry any other label; those are listed after these.
var CanonicalCategories = []string{
	"Starters",
	"Mains",
	"Sides",
	"Desserts",
	"Drinks",
}

// IsCanonicalCategory reports whether name is one of CanonicalCategories.
func IsCanonicalCategory(name string) bool {
	for _, c := range CanonicalCategories {
		if c == name {
			return true
		}
	}
	return false
}
