package core

import "strings"

// Category identifies one bucket of the fixed category registry.
type Category string

const (
	Food           Category = "food"
	Transportation Category = "transportation"
	Entertainment  Category = "entertainment"
	Housing        Category = "housing"
	Health         Category = "health"
	Education      Category = "education"
	Others         Category = "others"
)

// CategoryInfo is the display metadata of a registry entry.
type CategoryInfo struct {
	ID    Category
	Name  string
	Color string
}

// Border returns the opaque variant of the accent colour used for chart borders.
func (c CategoryInfo) Border() string {
	return strings.Replace(c.Color, "0.8", "1", 1)
}

var registry = []CategoryInfo{
	{ID: Food, Name: "Food", Color: "rgba(255, 99, 132, 0.8)"},
	{ID: Transportation, Name: "Transportation", Color: "rgba(54, 162, 235, 0.8)"},
	{ID: Entertainment, Name: "Entertainment", Color: "rgba(255, 206, 86, 0.8)"},
	{ID: Housing, Name: "Housing", Color: "rgba(75, 192, 192, 0.8)"},
	{ID: Health, Name: "Health", Color: "rgba(153, 102, 255, 0.8)"},
	{ID: Education, Name: "Education", Color: "rgba(255, 159, 64, 0.8)"},
	{ID: Others, Name: "Others", Color: "rgba(199, 199, 199, 0.8)"},
}

// Categories returns the registry in display order.
func Categories() []CategoryInfo {
	return append([]CategoryInfo(nil), registry...)
}

// Lookup returns the registry entry for c, falling back to Others.
func Lookup(c Category) CategoryInfo {
	for _, info := range registry {
		if info.ID == c {
			return info
		}
	}
	return registry[len(registry)-1]
}

// IsKnown reports whether c is a registry identifier.
func (c Category) IsKnown() bool {
	for _, info := range registry {
		if info.ID == c {
			return true
		}
	}
	return false
}

// Normalize maps a raw identifier onto the registry; anything unrecognised becomes Others.
func Normalize(raw string) Category {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	if c.IsKnown() {
		return c
	}
	return Others
}
