package services

import (
	"strings"

	domain "github.com/5th-Semester-Projects/Nexusmart-Ecommerce-Website-FWD-MERN-Stack-Project-sub002/internal/domain"
)

// DefaultHomeCountry is used when no home country is configured.
const DefaultHomeCountry = "US"

var countryAliases = map[string]string{
	"USA":                      "US",
	"UNITED STATES":            "US",
	"UNITED STATES OF AMERICA": "US",
}

// DefaultCityZones returns the built-in city table for the default home country.
func DefaultCityZones() map[string]domain.Zone {
	return map[string]domain.Zone{
		"new york":      domain.ZoneLocal,
		"manhattan":     domain.ZoneLocal,
		"brooklyn":      domain.ZoneLocal,
		"queens":        domain.ZoneLocal,
		"bronx":         domain.ZoneLocal,
		"staten island": domain.ZoneLocal,
		"newark":        domain.ZoneRegional,
		"jersey city":   domain.ZoneRegional,
		"yonkers":       domain.ZoneRegional,
		"stamford":      domain.ZoneRegional,
		"philadelphia":  domain.ZoneRegional,
		"boston":        domain.ZoneRegional,
		"hartford":      domain.ZoneRegional,
	}
}

// ZoneResolver maps a destination to a shipping zone. Every input maps to a zone.
type ZoneResolver struct {
	home   string
	cities map[string]domain.Zone
}

// NewZoneResolver builds a resolver. Empty inputs select the defaults.
func NewZoneResolver(homeCountry string, cities map[string]domain.Zone) *ZoneResolver {
	home := normalizeCountry(homeCountry)
	if home == "" {
		home = DefaultHomeCountry
	}
	if len(cities) == 0 {
		cities = DefaultCityZones()
	}
	table := make(map[string]domain.Zone, len(cities))
	for city, zone := range cities {
		if _, ok := domain.ParseZone(string(zone)); !ok {
			continue
		}
		// International is decided by country alone.
		if zone == domain.ZoneInternational {
			continue
		}
		table[normalizeCity(city)] = zone
	}
	return &ZoneResolver{home: home, cities: table}
}

// HomeCountry returns the normalised home country code.
func (r *ZoneResolver) HomeCountry() string {
	return r.home
}

// Resolve returns international for foreign countries, the table zone for known home cities and
// national otherwise. A blank country is read as the home country.
func (r *ZoneResolver) Resolve(country, city string) domain.Zone {
	c := normalizeCountry(country)
	if c != "" && c != r.home {
		return domain.ZoneInternational
	}
	if zone, ok := r.cities[normalizeCity(city)]; ok {
		return zone
	}
	return domain.ZoneNational
}

func normalizeCountry(country string) string {
	c := strings.ToUpper(strings.Join(strings.Fields(country), " "))
	if alias, ok := countryAliases[c]; ok {
		return alias
	}
	return c
}

func normalizeCity(city string) string {
	return strings.ToLower(strings.Join(strings.Fields(city), " "))
}
