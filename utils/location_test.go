package utils

import "testing"

func TestParseLocationString(t *testing.T) {
	tests := []struct {
		name             string
		input            string
		wantLat, wantLng float64
		wantErr          bool
	}{
		{"plain pair", "6.2,-1.6", 6.2, -1.6, false},
		{"spaces around parts", " 6.2 , -1.6 ", 6.2, -1.6, false},
		{"zero zero", "0,0", 0, 0, false},
		{"boundary values", "90,-180", 90, -180, false},
		{"latitude too large", "91,0", 0, 0, true},
		{"longitude too small", "0,-181", 0, 0, true},
		{"not numeric", "here,there", 0, 0, true},
		{"single value", "6.2", 0, 0, true},
		{"too many parts", "6.2,-1.6,3", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseLocation(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLocation(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if p.Lat() != tt.wantLat || p.Lon() != tt.wantLng {
				t.Errorf("ParseLocation(%q) = (%v, %v), expected (%v, %v)",
					tt.input, p.Lat(), p.Lon(), tt.wantLat, tt.wantLng)
			}
		})
	}
}

func TestParseLocationObject(t *testing.T) {
	p, err := ParseLocation(map[string]interface{}{"lat": 6.2, "lng": -1.6})
	if err != nil {
		t.Fatalf("ParseLocation(map) error = %v", err)
	}
	if p.Lat() != 6.2 || p.Lon() != -1.6 {
		t.Errorf("point = (%v, %v)", p.Lat(), p.Lon())
	}

	// lat/lng given as strings, the way form data sometimes arrives.
	p, err = ParseLocation(map[string]interface{}{"lat": "6.2", "lng": "-1.6"})
	if err != nil {
		t.Fatalf("ParseLocation(string map) error = %v", err)
	}
	if p.Lat() != 6.2 {
		t.Errorf("lat = %v", p.Lat())
	}

	if _, err := ParseLocation(map[string]interface{}{"lat": 6.2}); err == nil {
		t.Errorf("missing lng should fail")
	}
}

func TestParseLocationUnsupported(t *testing.T) {
	if _, err := ParseLocation(42); err == nil {
		t.Errorf("numeric location value should fail")
	}
	if _, err := ParseLocation(nil); err == nil {
		t.Errorf("nil location value should fail")
	}
}
