package routecache

import "testing"

func TestKeyDeterministic(t *testing.T) {
	p := Canonicalize(Params{Origin: "São Paulo", Destination: "Itu", VehicleType: "truck"})
	if Key(p) != Key(p) {
		t.Fatal("same canonical params must produce the same key")
	}
}

func TestCanonicalizeCaseAndWhitespace(t *testing.T) {
	a := Canonicalize(Params{Origin: "  Campinas ", Destination: "Santos", VehicleType: "Truck"})
	b := Canonicalize(Params{Origin: "campinas", Destination: " SANTOS  ", VehicleType: "truck"})
	if Key(a) != Key(b) {
		t.Error("case and surrounding whitespace must not affect the key")
	}

	c := Canonicalize(Params{Origin: "campinas   centro", Destination: "santos"})
	d := Canonicalize(Params{Origin: "campinas centro", Destination: "santos"})
	if Key(c) != Key(d) {
		t.Error("internal whitespace runs must collapse")
	}
}

func TestCanonicalizeWaypointOrder(t *testing.T) {
	a := Canonicalize(Params{Origin: "x", Destination: "y", Waypoints: []string{"Sorocaba", "Jundiaí"}})
	b := Canonicalize(Params{Origin: "x", Destination: "y", Waypoints: []string{"jundiaí", " sorocaba "}})
	if Key(a) != Key(b) {
		t.Error("waypoint order and casing must not affect the key")
	}
}

func TestCanonicalizeKeepsDiacritics(t *testing.T) {
	a := Canonicalize(Params{Origin: "São Paulo", Destination: "Itu"})
	b := Canonicalize(Params{Origin: "sao paulo", Destination: "itu"})
	if Key(a) == Key(b) {
		t.Error("diacritics are not folded; accented and plain spellings are distinct lanes")
	}
}

func TestCanonicalizeDefaults(t *testing.T) {
	omitted := Canonicalize(Params{Origin: "a", Destination: "b", UseTolls: true, UseHighways: true})
	explicit := Canonicalize(Params{
		Origin: "a", Destination: "b",
		VehicleAxles:    "all",
		FreightCategory: "A",
		CargoType:       "geral",
		UseTolls:        true,
		UseHighways:     true,
	})
	if Key(omitted) != Key(explicit) {
		t.Error("omitted optional fields and their explicit defaults must hash identically")
	}
	if omitted.VehicleAxles != DefaultAxles || omitted.FreightCategory != DefaultFreightCategory || omitted.CargoType != DefaultCargoType {
		t.Errorf("defaults not substituted: %+v", omitted)
	}
}

func TestKeyVariesByDimension(t *testing.T) {
	base := Params{Origin: "a", Destination: "b", VehicleType: "truck", UseTolls: true, UseHighways: true}
	variants := []Params{
		{Origin: "a2", Destination: "b", VehicleType: "truck", UseTolls: true, UseHighways: true},
		{Origin: "a", Destination: "b2", VehicleType: "truck", UseTolls: true, UseHighways: true},
		{Origin: "a", Destination: "b", VehicleType: "van", UseTolls: true, UseHighways: true},
		{Origin: "a", Destination: "b", VehicleType: "truck", UseTolls: false, UseHighways: true},
		{Origin: "a", Destination: "b", VehicleType: "truck", Waypoints: []string{"c"}, UseTolls: true, UseHighways: true},
		{Origin: "a", Destination: "b", VehicleType: "truck", FreightCategory: "B", UseTolls: true, UseHighways: true},
	}
	baseKey := Key(Canonicalize(base))
	for i, v := range variants {
		if Key(Canonicalize(v)) == baseKey {
			t.Errorf("variant %d should produce a different key", i)
		}
	}
}
