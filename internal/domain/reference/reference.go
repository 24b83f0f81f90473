package reference

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"
)

// HubCityName is the single designated aggregation point for synthesized
// connectivity. All hub lookups go through HubCityID().
const HubCityName = "Якутск"

// HubCityID returns the normalized hub city id.
func HubCityID() string {
	return NormalizeCityName(HubCityName)
}

// UnifiedCity is one entry of the static city reference, the universe from
// which virtual stops may be drawn.
type UnifiedCity struct {
	Name          string  `json:"name"`
	IsFederalCity bool    `json:"isFederalCity"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
}

// Directory is an immutable, lookup-optimized view over a city set.
// Production code uses the embedded directory; tests build their own.
type Directory struct {
	cities     []UnifiedCity
	byNormName map[string]UnifiedCity
}

// NewDirectory builds a Directory from an explicit city list.
func NewDirectory(cities []UnifiedCity) *Directory {
	d := &Directory{
		cities:     make([]UnifiedCity, len(cities)),
		byNormName: make(map[string]UnifiedCity, len(cities)),
	}
	copy(d.cities, cities)
	for _, c := range d.cities {
		d.byNormName[NormalizeCityName(c.Name)] = c
	}
	return d
}

// CityByNormalizedName resolves a city by any spelling of its name.
func (d *Directory) CityByNormalizedName(name string) (UnifiedCity, bool) {
	c, ok := d.byNormName[NormalizeCityName(name)]
	return c, ok
}

// Contains reports whether the city appears in the reference.
func (d *Directory) Contains(name string) bool {
	_, ok := d.byNormName[NormalizeCityName(name)]
	return ok
}

// All returns every city in the directory.
func (d *Directory) All() []UnifiedCity {
	out := make([]UnifiedCity, len(d.cities))
	copy(out, d.cities)
	return out
}

// FederalCities returns the federal subset.
func (d *Directory) FederalCities() []UnifiedCity {
	var out []UnifiedCity
	for _, c := range d.cities {
		if c.IsFederalCity {
			out = append(out, c)
		}
	}
	return out
}

// YakutiaCities returns the non-federal subset.
func (d *Directory) YakutiaCities() []UnifiedCity {
	var out []UnifiedCity
	for _, c := range d.cities {
		if !c.IsFederalCity {
			out = append(out, c)
		}
	}
	return out
}

//go:embed assets/unified_cities.json
var unifiedCitiesJSON []byte

//go:embed assets/airports.json
var airportsJSON []byte

//go:embed assets/suburbs.json
var suburbsJSON []byte

var (
	loadOnce    sync.Once
	embedded    *Directory
	airportCity map[string]string
	suburbCity  map[string]string
)

// Embedded returns the process-wide directory loaded from the bundled
// reference assets. Loaded once, shared immutably thereafter.
func Embedded() *Directory {
	load()
	return embedded
}

func load() {
	loadOnce.Do(func() {
		var cities []UnifiedCity
		if err := json.Unmarshal(unifiedCitiesJSON, &cities); err != nil {
			panic(fmt.Sprintf("reference: malformed unified_cities.json: %v", err))
		}
		embedded = NewDirectory(cities)

		airportCity = loadAliasMap(airportsJSON, "airports.json")
		suburbCity = loadAliasMap(suburbsJSON, "suburbs.json")
	})
}

func loadAliasMap(raw []byte, assetName string) map[string]string {
	var src map[string]string
	if err := json.Unmarshal(raw, &src); err != nil {
		panic(fmt.Sprintf("reference: malformed %s: %v", assetName, err))
	}
	out := make(map[string]string, len(src))
	for alias, city := range src {
		out[NormalizeCityName(alias)] = city
	}
	return out
}

// UnifiedCityByNormalizedName resolves a city from the embedded reference.
func UnifiedCityByNormalizedName(name string) (UnifiedCity, bool) {
	return Embedded().CityByNormalizedName(name)
}

// IsCityInReference reports whether the embedded reference knows the city.
func IsCityInReference(name string) bool {
	return Embedded().Contains(name)
}

// AllFederalCities returns the embedded federal city set.
func AllFederalCities() []UnifiedCity {
	return Embedded().FederalCities()
}

// AllYakutiaCities returns the embedded Yakutia city set.
func AllYakutiaCities() []UnifiedCity {
	return Embedded().YakutiaCities()
}

// CityByAirportName maps an airport name to its city name.
func CityByAirportName(airportName string) (string, bool) {
	load()
	city, ok := airportCity[NormalizeCityName(airportName)]
	return city, ok
}

// MainCityBySuburb maps a suburb to the main city it belongs to.
func MainCityBySuburb(suburbName string) (string, bool) {
	load()
	city, ok := suburbCity[NormalizeCityName(suburbName)]
	return city, ok
}
