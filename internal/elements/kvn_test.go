package elements

import "testing"

func TestDecodeKVNCoercion(t *testing.T) {
	tests := []struct {
		line string
		key  string
		want Value
	}{
		{"ECCENTRICITY = 0.000315", "ECCENTRICITY", Number(0.000315)},
		{"OBJECT_NAME = ISS (ZARYA)", "OBJECT_NAME", String("ISS (ZARYA)")},
		{`OBJECT_NAME = "ISS (ZARYA)"`, "OBJECT_NAME", String("ISS (ZARYA)")},
		{"OBJECT_ID = '1998-067A'", "OBJECT_ID", String("1998-067A")},
		{"USER_DEFINED_FLAG = true", "USER_DEFINED_FLAG", Bool(true)},
		{"USER_DEFINED_FLAG = false", "USER_DEFINED_FLAG", Bool(false)},
		{"OBJECT_ID = null", "OBJECT_ID", Null()},
		{"NORAD_CAT_ID = 25544", "NORAD_CAT_ID", Number(25544)},
		{"NORAD_CAT_ID = unknown", "NORAD_CAT_ID", String("unknown")},
		{"BSTAR = -1.1606E-5", "BSTAR", Number(-1.1606e-5)},
		{"MEAN_MOTION = 15.49587957 [rev/day]", "MEAN_MOTION", Number(15.49587957)},
		{"INCLINATION = 53.0536 [deg]", "INCLINATION", Number(53.0536)},
		{"OBJECT_NAME = STARLINK-1008 [DTC]", "OBJECT_NAME", String("STARLINK-1008 [DTC]")},
		{"CENTER_NAME = EARTH [PRIMARY]", "CENTER_NAME", String("EARTH [PRIMARY]")},
		{"GM = 398600.8", "GM", Number(398600.8)},
		{"CENTER_NAME = EARTH", "CENTER_NAME", String("EARTH")},
		{"EPOCH = '2025-05-18T08:53:29.535936'", "EPOCH", String("2025-05-18T08:53:29.535936")},
		{"ORIGINATOR=18 SPCS", "ORIGINATOR", String("18 SPCS")},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			rec, fields := DecodeKVN(tt.line)
			if len(fields) != 1 {
				t.Fatalf("got %d fields, want 1", len(fields))
			}
			got, ok := rec[tt.key]
			if !ok {
				t.Fatalf("key %s missing from %v", tt.key, rec)
			}
			if got != tt.want {
				t.Errorf("value = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDecodeKVNIntegralCollapse(t *testing.T) {
	rec, _ := DecodeKVN("REV_AT_EPOCH = 51053.0\nSPARE = 7")
	for _, key := range []string{"REV_AT_EPOCH", "SPARE"} {
		v := rec[key]
		if v.Kind != ValueNumber || !v.Integral {
			t.Errorf("%s = %+v, want integral number", key, v)
		}
	}
	if got := rec["REV_AT_EPOCH"].Text(); got != "51053" {
		t.Errorf("Text() = %q, want 51053", got)
	}
}

func TestDecodeKVNSkipsNonMatchingLines(t *testing.T) {
	text := "COMMENT this is a comment\n\nlowercase = 1\n= orphan\nOBJECT_NAME = ISS (ZARYA)\nMEAN_MOTION 15.5\n"
	rec, fields := DecodeKVN(text)
	if len(fields) != 1 || len(rec) != 1 {
		t.Fatalf("fields = %+v", fields)
	}
	if rec.Text("OBJECT_NAME") != "ISS (ZARYA)" {
		t.Errorf("OBJECT_NAME = %q", rec.Text("OBJECT_NAME"))
	}
}

func TestDecodeKVNFlagsBadEpoch(t *testing.T) {
	rec, fields := DecodeKVN("EPOCH = 25138.37048074\nOBJECT_NAME = X")
	if len(fields) != 2 {
		t.Fatalf("got %d fields", len(fields))
	}
	if !fields[0].Flagged {
		t.Error("EPOCH not flagged")
	}
	if fields[1].Flagged {
		t.Error("OBJECT_NAME flagged")
	}
	if v := rec["EPOCH"]; v.Kind != ValueString || v.Str != "25138.37048074" {
		t.Errorf("EPOCH = %+v, want the raw string", v)
	}
}

func TestDecodeKVNLaterKeyWins(t *testing.T) {
	rec, fields := DecodeKVN("INCLINATION = 1\nINCLINATION = 2")
	if len(fields) != 2 {
		t.Fatalf("got %d fields", len(fields))
	}
	if f, _ := rec.Float("INCLINATION"); f != 2 {
		t.Errorf("INCLINATION = %v, want 2", f)
	}
}

func TestParseEpoch(t *testing.T) {
	good := []string{
		"2025-05-18T08:53:29.535936",
		"2025-05-18T08:53:29Z",
		"2025-05-18T08:53:29.5+00:00",
		"2025-05-18 08:53:29",
		"2025-138T08:53:29.535936",
		"2025-05-18",
	}
	for _, s := range good {
		if _, err := ParseEpoch(s); err != nil {
			t.Errorf("ParseEpoch(%q): %v", s, err)
		}
	}

	bad := []string{"", "yesterday", "25138.37048074", "2025-13-01T00:00:00"}
	for _, s := range bad {
		if _, err := ParseEpoch(s); err == nil {
			t.Errorf("ParseEpoch(%q) succeeded", s)
		}
	}
}

func TestDecodeJSON(t *testing.T) {
	rec, err := DecodeJSON(issJSON)
	if err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	if v := rec["NORAD_CAT_ID"]; v.Kind != ValueNumber || v.Num != 25544 {
		t.Errorf("NORAD_CAT_ID = %+v", v)
	}
	if rec.Text("OBJECT_NAME") != "ISS (ZARYA)" {
		t.Errorf("OBJECT_NAME = %q", rec.Text("OBJECT_NAME"))
	}

	for _, raw := range []string{`[]`, `{"OBJECT_NAME": `, `["x"]`, `no json here`} {
		if _, err := DecodeJSON(raw); KindOf(err) != KindInvalidOMM {
			t.Errorf("DecodeJSON(%q) err = %v, want InvalidOmm", raw, err)
		}
	}
}
