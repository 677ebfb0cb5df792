package events

import (
	"strconv"
	"strings"
)

// Classification is the outcome of matching a queried event descriptor.
type Classification string

const (
	// ClassMessage means a new message arrived on the subscribed topic.
	ClassMessage Classification = "message-available"
	// ClassOTAOffered means the module was offered a new OTA image.
	ClassOTAOffered Classification = "ota-offered"
	// ClassOTAVerified means a downloaded OTA image passed verification.
	ClassOTAVerified Classification = "ota-verified"
	// ClassStartup means the module reported a boot or restart.
	ClassStartup Classification = "startup"
	// ClassNone covers the idle queue and anything unrecognized.
	ClassNone Classification = "none"
)

// Descriptor is the structured form of a module event reply,
// "OK <domain> <stage> <KIND>\r\n".
type Descriptor struct {
	Domain int
	Stage  int
	Kind   string
}

// ParseDescriptor parses raw into a Descriptor. Parsing is canonical: the
// input must re-render byte-for-byte from the parsed fields, so no prefix,
// suffix or alternate spelling of a known descriptor slips through. This
// keeps the structured matcher exactly as strict as the literal comparisons
// it replaced.
func ParseDescriptor(raw string) (Descriptor, bool) {
	body, found := strings.CutSuffix(raw, "\r\n")
	if !found {
		return Descriptor{}, false
	}
	fields := strings.Split(body, " ")
	if len(fields) != 4 || fields[0] != "OK" {
		return Descriptor{}, false
	}
	domain, err := strconv.Atoi(fields[1])
	if err != nil {
		return Descriptor{}, false
	}
	stage, err := strconv.Atoi(fields[2])
	if err != nil {
		return Descriptor{}, false
	}
	d := Descriptor{Domain: domain, Stage: stage, Kind: fields[3]}
	if d.render() != raw {
		return Descriptor{}, false
	}
	return d, true
}

func (d Descriptor) render() string {
	return "OK " + strconv.Itoa(d.Domain) + " " + strconv.Itoa(d.Stage) + " " + d.Kind + "\r\n"
}

// Classify maps a raw event reply to its Classification. At most one class
// matches any input; everything unparsable or unknown is ClassNone.
func Classify(raw string) Classification {
	d, ok := ParseDescriptor(raw)
	if !ok {
		return ClassNone
	}
	switch d {
	case Descriptor{Domain: 1, Stage: 1, Kind: "MSG"}:
		return ClassMessage
	case Descriptor{Domain: 5, Stage: 1, Kind: "OTA"}:
		return ClassOTAOffered
	case Descriptor{Domain: 5, Stage: 4, Kind: "OTA"}:
		return ClassOTAVerified
	case Descriptor{Domain: 2, Stage: 0, Kind: "STARTUP"}:
		return ClassStartup
	}
	return ClassNone
}
