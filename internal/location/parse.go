package location

import (
	"strings"

	"github.com/samber/lo"

	"voxxy/internal/api"
)

// boroughs are areas geocoders tag as political/sublocality although users
// think of them as the city.
var boroughs = []string{"manhattan", "brooklyn", "queens", "bronx", "the bronx", "staten island"}

// Address is the normalized outcome of parsing a geocoder response.
type Address struct {
	Neighborhood string
	City         string
	State        string
	Country      string
}

func isBorough(name string) bool {
	return lo.Contains(boroughs, strings.ToLower(strings.TrimSpace(name)))
}

func hasType(c api.AddressComponent, t string) bool {
	return lo.Contains(c.Types, t)
}

func hasTypePrefix(c api.AddressComponent, prefix string) bool {
	return lo.SomeBy(c.Types, func(t string) bool { return strings.HasPrefix(t, prefix) })
}

// ParseAddressComponents resolves neighborhood and city from address components.
//
// Priority: an explicit neighborhood wins, then a sublocality. A political
// component that is neither administrative nor a country is held as a
// candidate area; a known borough becomes the city, and any other candidate is
// promoted to city when no locality was found. When the components leave the
// city empty, the first two comma-separated tokens of formatted are used.
func ParseAddressComponents(components []api.AddressComponent, formatted string) Address {
	var neighborhood, sublocality, locality, political string
	var addr Address

	for _, c := range components {
		name := strings.TrimSpace(c.LongName)
		if name == "" {
			continue
		}
		switch {
		case hasType(c, "neighborhood"):
			if neighborhood == "" {
				neighborhood = name
			}
		case hasTypePrefix(c, "sublocality"):
			if sublocality == "" {
				sublocality = name
			}
		case hasType(c, "locality") || hasType(c, "postal_town"):
			if locality == "" {
				locality = name
			}
		case hasType(c, "administrative_area_level_1"):
			addr.State = lo.Ternary(c.ShortName != "", c.ShortName, name)
		case hasType(c, "country"):
			addr.Country = name
		case hasType(c, "political") && !hasTypePrefix(c, "administrative_area"):
			if political == "" {
				political = name
			}
		}
	}

	if neighborhood == "" && sublocality != "" && !isBorough(sublocality) {
		neighborhood = sublocality
	}

	city := locality
	switch {
	case isBorough(sublocality):
		city = sublocality
	case isBorough(political):
		city = political
	case city == "" && political != "" && political != neighborhood:
		city = political
	case city == "" && sublocality != "" && sublocality != neighborhood:
		city = sublocality
	}

	if city == "" {
		parts := lo.FilterMap(strings.Split(formatted, ","), func(p string, _ int) (string, bool) {
			p = strings.TrimSpace(p)
			return p, p != ""
		})
		switch {
		case len(parts) >= 2:
			if neighborhood == "" {
				neighborhood = parts[0]
			}
			city = parts[1]
		case len(parts) == 1 && neighborhood == "":
			city = parts[0]
		}
	}

	addr.Neighborhood = neighborhood
	addr.City = city
	return addr
}
