package geo

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/metropolisapp/metropolis/internal/models"
)

//go:embed cities.yaml
var citiesYAML []byte

// BoundingBox is the known extent of a major city, used to validate that
// a geocoding result landed where the itinerary says it should.
type BoundingBox struct {
	Name   string  `yaml:"name"`
	MinLat float64 `yaml:"min_lat"`
	MaxLat float64 `yaml:"max_lat"`
	MinLng float64 `yaml:"min_lng"`
	MaxLng float64 `yaml:"max_lng"`
}

// Contains reports whether the point falls inside the box.
func (b BoundingBox) Contains(p models.GeoPoint) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat &&
		p.Lng >= b.MinLng && p.Lng <= b.MaxLng
}

// Center returns the box's midpoint.
func (b BoundingBox) Center() models.GeoPoint {
	return models.GeoPoint{
		Lat: (b.MinLat + b.MaxLat) / 2,
		Lng: (b.MinLng + b.MaxLng) / 2,
	}
}

var cityBoxes = mustLoadCityBoxes()

func mustLoadCityBoxes() map[string]BoundingBox {
	var doc struct {
		Cities []BoundingBox `yaml:"cities"`
	}
	if err := yaml.Unmarshal(citiesYAML, &doc); err != nil {
		panic(fmt.Sprintf("geo: invalid embedded cities.yaml: %v", err))
	}
	boxes := make(map[string]BoundingBox, len(doc.Cities))
	for _, b := range doc.Cities {
		boxes[strings.ToLower(b.Name)] = b
	}
	return boxes
}

// BoundsFor returns the bounding box for a city, if one is configured.
// Cities outside the table skip consistency checking entirely.
func BoundsFor(city string) (BoundingBox, bool) {
	box, ok := cityBoxes[strings.ToLower(strings.TrimSpace(city))]
	return box, ok
}
