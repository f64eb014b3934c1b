package elements

import (
	"strings"
	"testing"
)

func TestCatalogNumber(t *testing.T) {
	tests := []struct {
		line string
		want int
		ok   bool
	}{
		{issLine1, 25544, true},
		{issLine2, 25544, true},
		{"1  5544U", 5544, true},
		{"1 123", 0, false},
		{"3 25544", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := CatalogNumber(tt.line)
		if got != tt.want || ok != tt.ok {
			t.Errorf("CatalogNumber(%q) = %d, %v; want %d, %v", tt.line, got, ok, tt.want, tt.ok)
		}
	}
}

// TestValidateTLEProperty checks that the verdict is exactly the
// conjunction of the four structural conditions over a set of mutations.
func TestValidateTLEProperty(t *testing.T) {
	otherCat := "2 25545" + issLine2[7:]
	cases := [][2]string{
		{issLine1, issLine2},
		{issLine1[:68], issLine2[:68]},
		{issLine1[:67], issLine2},
		{issLine1, issLine2[:60]},
		{issLine2, issLine1},
		{"X" + issLine1[1:], issLine2},
		{issLine1, "3" + issLine2[1:]},
		{issLine1, otherCat},
		{"1 ABCDE" + issLine1[7:], "2 ABCDE" + issLine2[7:]},
		{"", ""},
	}

	for _, c := range cases {
		l1, l2 := c[0], c[1]
		cat1, ok1 := CatalogNumber(l1)
		cat2, ok2 := CatalogNumber(l2)
		want := len(l1) >= 68 && len(l2) >= 68 &&
			strings.HasPrefix(l1, "1 ") && strings.HasPrefix(l2, "2 ") &&
			ok1 && ok2 && cat1 == cat2

		v := ValidateTLE(l1, l2)
		if v.OK != want {
			t.Errorf("ValidateTLE(%q, %q).OK = %v, want %v (reasons %v)", l1, l2, v.OK, want, v.Reasons)
		}
		if !v.OK && len(v.Reasons) == 0 {
			t.Errorf("rejected %q without reasons", l1)
		}
	}
}

func TestValidateTLEReportsMismatch(t *testing.T) {
	v := ValidateTLE(issLine1, "2 25545"+issLine2[7:])
	if v.OK {
		t.Fatal("accepted mismatched catalog numbers")
	}
	if len(v.Reasons) != 1 || !strings.Contains(v.Reasons[0], "25545") {
		t.Errorf("reasons = %v", v.Reasons)
	}
}

func validOMM() OMMRecord {
	return OMMRecord{
		"OBJECT_NAME":       String("ISS (ZARYA)"),
		"NORAD_CAT_ID":      Number(25544),
		"EPOCH":             String("2025-05-18T08:53:29.535936"),
		"MEAN_MOTION":       Number(15.49587957),
		"ECCENTRICITY":      Number(0.0002558),
		"INCLINATION":       Number(51.6369),
		"RA_OF_ASC_NODE":    Number(94.7823),
		"ARG_OF_PERICENTER": Number(120.7586),
		"MEAN_ANOMALY":      Number(15.784),
	}
}

func TestValidateOMM(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(OMMRecord)
		ok     bool
		warn   bool
	}{
		{"valid", func(OMMRecord) {}, true, false},
		{"string catalog id", func(r OMMRecord) { r["NORAD_CAT_ID"] = String("25544") }, true, false},
		{"numeric strings", func(r OMMRecord) { r["MEAN_MOTION"] = String("15.5") }, true, false},
		{"missing epoch", func(r OMMRecord) { delete(r, "EPOCH") }, false, false},
		{"missing name", func(r OMMRecord) { delete(r, "OBJECT_NAME") }, false, false},
		{"bool catalog id", func(r OMMRecord) { r["NORAD_CAT_ID"] = Bool(true) }, false, false},
		{"null catalog id", func(r OMMRecord) { r["NORAD_CAT_ID"] = Null() }, false, false},
		{"numeric epoch", func(r OMMRecord) { r["EPOCH"] = Number(25138.37) }, false, false},
		{"text inclination", func(r OMMRecord) { r["INCLINATION"] = String("steep") }, false, false},
		{"null anomaly", func(r OMMRecord) { r["MEAN_ANOMALY"] = Null() }, false, false},
		{"infinite motion", func(r OMMRecord) { r["MEAN_MOTION"] = String("Inf") }, false, false},
		{"hyperbolic", func(r OMMRecord) { r["ECCENTRICITY"] = Number(1.2) }, true, true},
		{"negative eccentricity", func(r OMMRecord) { r["ECCENTRICITY"] = Number(-0.1) }, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := validOMM()
			tt.mutate(rec)
			v := ValidateOMM(rec)
			if v.OK != tt.ok {
				t.Fatalf("OK = %v, want %v (reasons %v)", v.OK, tt.ok, v.Reasons)
			}
			if got := len(v.Warnings) > 0; got != tt.warn {
				t.Errorf("warnings = %v, want warning %v", v.Warnings, tt.warn)
			}
		})
	}
}

func TestValidateOMMListsEveryMissingField(t *testing.T) {
	v := ValidateOMM(OMMRecord{})
	if v.OK {
		t.Fatal("empty record accepted")
	}
	if len(v.Reasons) != len(RequiredOMMFields) {
		t.Errorf("got %d reasons, want %d: %v", len(v.Reasons), len(RequiredOMMFields), v.Reasons)
	}
}
