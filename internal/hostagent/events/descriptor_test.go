package events

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		raw  string
		want Classification
	}{
		{"OK 1 1 MSG\r\n", ClassMessage},
		{"OK 5 1 OTA\r\n", ClassOTAOffered},
		{"OK 5 4 OTA\r\n", ClassOTAVerified},
		{"OK 2 0 STARTUP\r\n", ClassStartup},
		{"OK\r\n", ClassNone},
		{"", ClassNone},
		{"ERR 1 1 MSG\r\n", ClassNone},
		{"OK 1 1 MSG", ClassNone},            // missing terminator
		{"OK 1 1 MSG extra\r\n", ClassNone},  // trailing field
		{"XOK 1 1 MSG\r\n", ClassNone},       // no prefix matching
		{"OK 01 1 MSG\r\n", ClassNone},       // non-canonical number
		{"OK 1 1 msg\r\n", ClassNone},        // case matters
		{"OK 1 1  MSG\r\n", ClassNone},       // double space
		{"OK 9 9 MSG\r\n", ClassNone},        // well-formed but unknown
		{"OK 1 1 MSG\r\nOK 5 1 OTA\r\n", ClassNone},
	}

	for _, tt := range tests {
		if got := Classify(tt.raw); got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestClassifyExclusive(t *testing.T) {
	// Every recognized descriptor matches exactly one class.
	known := map[string]Classification{
		"OK 1 1 MSG\r\n":     ClassMessage,
		"OK 5 1 OTA\r\n":     ClassOTAOffered,
		"OK 5 4 OTA\r\n":     ClassOTAVerified,
		"OK 2 0 STARTUP\r\n": ClassStartup,
	}
	seen := map[Classification]bool{}
	for raw, want := range known {
		got := Classify(raw)
		if got != want {
			t.Errorf("Classify(%q) = %v, want %v", raw, got, want)
		}
		if seen[got] {
			t.Errorf("classification %v produced by more than one descriptor", got)
		}
		seen[got] = true
	}
}

func TestParseDescriptor(t *testing.T) {
	d, ok := ParseDescriptor("OK 5 4 OTA\r\n")
	if !ok {
		t.Fatal("ParseDescriptor failed on valid input")
	}
	if d != (Descriptor{Domain: 5, Stage: 4, Kind: "OTA"}) {
		t.Errorf("ParseDescriptor = %+v", d)
	}

	if _, ok := ParseDescriptor("OK 5 4\r\n"); ok {
		t.Error("accepted descriptor with missing kind")
	}
	if _, ok := ParseDescriptor("OK x 4 OTA\r\n"); ok {
		t.Error("accepted non-numeric domain")
	}
}
