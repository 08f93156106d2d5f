package loads_test

import (
	"errors"
	"strings"
	"testing"

	"loadfinder/internal/loads"
)

func sampleInput() loads.Input {
	distance := int64(197)
	return loads.Input{
		OriginCity:  "Houston",
		OriginState: "TX",
		DestCity:    "San Antonio",
		DestState:   "TX",
		Pickup:      "2026-08-26",
		Company:     "Acme Freight",
		Rate:        "$1,250",
		Distance:    &distance,
	}
}

func TestDeriveKeyDeterministic(t *testing.T) {
	first, err := loads.DeriveKey(sampleInput())
	if err != nil {
		t.Fatalf("DeriveKey: %v", err)
	}
	second, err := loads.DeriveKey(sampleInput())
	if err != nil {
		t.Fatalf("DeriveKey second: %v", err)
	}
	if first != second {
		t.Fatalf("expected identical keys, got %q and %q", first, second)
	}
	if !strings.HasPrefix(first, "load:") {
		t.Fatalf("expected load: prefix, got %q", first)
	}
	if len(first) != len("load:")+24 {
		t.Fatalf("expected fixed-length key, got %d chars", len(first))
	}
}

func TestDeriveKeyDistinguishesNearDuplicates(t *testing.T) {
	base, err := loads.DeriveKey(sampleInput())
	if err != nil {
		t.Fatalf("DeriveKey: %v", err)
	}

	variants := []func(*loads.Input){
		func(in *loads.Input) { in.OriginCity = "Dallas" },
		func(in *loads.Input) { in.DestState = "OK" },
		func(in *loads.Input) { in.Pickup = "2026-08-27" },
		func(in *loads.Input) { in.Company = "Other Carrier" },
		func(in *loads.Input) { in.Rate = "$1,251" },
		func(in *loads.Input) { in.Distance = nil },
	}
	for i, mutate := range variants {
		in := sampleInput()
		mutate(&in)
		key, err := loads.DeriveKey(in)
		if err != nil {
			t.Fatalf("variant %d: DeriveKey: %v", i, err)
		}
		if key == base {
			t.Fatalf("variant %d: expected distinct key, got %q for both", i, key)
		}
	}
}

func TestDeriveKeyDelimiterSafe(t *testing.T) {
	a := sampleInput()
	a.OriginCity = "Hous|ton"
	a.OriginState = "TX"
	b := sampleInput()
	b.OriginCity = "Hous"
	b.OriginState = "ton|TX"

	keyA, err := loads.DeriveKey(a)
	if err != nil {
		t.Fatalf("DeriveKey a: %v", err)
	}
	keyB, err := loads.DeriveKey(b)
	if err != nil {
		t.Fatalf("DeriveKey b: %v", err)
	}
	if keyA == keyB {
		t.Fatal("expected shifted delimiter content to produce distinct keys")
	}
}

func TestDeriveKeyRejectsMissingCoreFields(t *testing.T) {
	cases := []func(*loads.Input){
		func(in *loads.Input) { in.OriginCity = "" },
		func(in *loads.Input) { in.OriginState = "  " },
		func(in *loads.Input) { in.DestCity = "" },
		func(in *loads.Input) { in.DestState = "" },
	}
	for i, mutate := range cases {
		in := sampleInput()
		mutate(&in)
		if _, err := loads.DeriveKey(in); !errors.Is(err, loads.ErrMalformedRecord) {
			t.Fatalf("case %d: expected ErrMalformedRecord, got %v", i, err)
		}
	}
}
