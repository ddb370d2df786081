// Copyright (c) 2026 Tatami. All rights reserved.
// Author: an.le.vn@gmail.com

/*
Package reference holds the read-only reference data of Tatami: the martial
arts catalogue, the supported countries, and the role catalogue.

# Immutability

Reference data never changes at runtime. A [Catalogue] is built once during
startup and injected wherever reference lookups are needed; there are no
package-level mutable registries. Lookup methods return copies, so callers
cannot corrupt the shared data.
*/
package reference

// # Reference Entities

// Art represents one martial art recognised by the federation.
type Art struct {
	Code string `json:"code"` // e.g. "judo"
	Name string `json:"name"`
}

// Country represents a supported country.
type Country struct {
	Code string `json:"code"` // ISO 3166-1 alpha-2
	Name string `json:"name"`
}

// # Catalogue

// Catalogue is the immutable reference data set, built once at startup.
type Catalogue struct {
	arts      map[string]Art
	countries map[string]Country

	artList     []Art
	countryList []Country
}

// NewCatalogue builds a [Catalogue] from the given entries. The input slices
// are copied; later mutation of the arguments does not affect the catalogue.
func NewCatalogue(arts []Art, countries []Country) *Catalogue {
	catalogue := &Catalogue{
		arts:        make(map[string]Art, len(arts)),
		countries:   make(map[string]Country, len(countries)),
		artList:     make([]Art, len(arts)),
		countryList: make([]Country, len(countries)),
	}

	copy(catalogue.artList, arts)
	copy(catalogue.countryList, countries)

	for _, art := range arts {
		catalogue.arts[art.Code] = art
	}
	for _, country := range countries {
		catalogue.countries[country.Code] = country
	}

	return catalogue
}

// Arts returns all recognised martial arts in catalogue order.
func (catalogue *Catalogue) Arts() []Art {
	arts := make([]Art, len(catalogue.artList))
	copy(arts, catalogue.artList)
	return arts
}

// Countries returns all supported countries in catalogue order.
func (catalogue *Catalogue) Countries() []Country {
	countries := make([]Country, len(catalogue.countryList))
	copy(countries, catalogue.countryList)
	return countries
}

// ArtByCode looks up a martial art by its code.
func (catalogue *Catalogue) ArtByCode(code string) (Art, bool) {
	art, ok := catalogue.arts[code]
	return art, ok
}

// CountryByCode looks up a country by its ISO code.
func (catalogue *Catalogue) CountryByCode(code string) (Country, bool) {
	country, ok := catalogue.countries[code]
	return country, ok
}
