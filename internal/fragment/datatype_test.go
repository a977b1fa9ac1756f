package fragment

import "testing"

func TestParseDatatype(t *testing.T) {
	valid := []string{
		"float32", "float64",
		"uint8", "uint16", "uint32",
		"int8", "int16", "int32", "int64",
		"complex64", "bool",
	}
	for _, tok := range valid {
		dt, err := ParseDatatype(tok)
		if err != nil {
			t.Errorf("ParseDatatype(%q) error = %v", tok, err)
		}
		if dt.String() != tok {
			t.Errorf("ParseDatatype(%q) = %q", tok, dt)
		}
	}
}

func TestParseDatatypeUnknown(t *testing.T) {
	for _, tok := range []string{"", "float128", "string", "FLOAT32"} {
		if _, err := ParseDatatype(tok); err == nil {
			t.Errorf("ParseDatatype(%q) error = nil, want error", tok)
		}
	}
}

func TestDatatypeIsSet(t *testing.T) {
	if DatatypeUnset.IsSet() {
		t.Error("DatatypeUnset.IsSet() = true")
	}
	if !Float32.IsSet() {
		t.Error("Float32.IsSet() = false")
	}
}
