// Copyright (c) 2026 Tatami. All rights reserved.
// Author: an.le.vn@gmail.com

package reference

// # Default Data

// DefaultArts lists the martial arts recognised at launch.
func DefaultArts() []Art {
	return []Art{
		{Code: "aikido", Name: "Aikido"},
		{Code: "iaido", Name: "Iaido"},
		{Code: "judo", Name: "Judo"},
		{Code: "jujutsu", Name: "Jujutsu"},
		{Code: "karate", Name: "Karate"},
		{Code: "kendo", Name: "Kendo"},
		{Code: "kyudo", Name: "Kyudo"},
		{Code: "naginata", Name: "Naginata"},
		{Code: "sumo", Name: "Sumo"},
	}
}

// DefaultCountries lists the countries supported at launch.
func DefaultCountries() []Country {
	return []Country{
		{Code: "AT", Name: "Austria"},
		{Code: "BE", Name: "Belgium"},
		{Code: "CH", Name: "Switzerland"},
		{Code: "DE", Name: "Germany"},
		{Code: "DK", Name: "Denmark"},
		{Code: "ES", Name: "Spain"},
		{Code: "FI", Name: "Finland"},
		{Code: "FR", Name: "France"},
		{Code: "GB", Name: "United Kingdom"},
		{Code: "IE", Name: "Ireland"},
		{Code: "IT", Name: "Italy"},
		{Code: "JP", Name: "Japan"},
		{Code: "NL", Name: "Netherlands"},
		{Code: "NO", Name: "Norway"},
		{Code: "PT", Name: "Portugal"},
		{Code: "SE", Name: "Sweden"},
		{Code: "US", Name: "United States"},
	}
}

// DefaultCatalogue builds the launch catalogue.
func DefaultCatalogue() *Catalogue {
	return NewCatalogue(DefaultArts(), DefaultCountries())
}
