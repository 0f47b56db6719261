// Package canonical produces the byte-exact JSON form of request payloads
// that the repository service signs and verifies.
//
// The format is fixed: object keys sorted by code point, four-space
// indentation, ", " never used inside lines (elements are separated by
// ",\n"), ": " between a key and its value, and every rune outside
// printable ASCII escaped as \uXXXX. It is identical to what Python produces
// with
//
//	json.dumps(v, sort_keys=True, indent=4, separators=(',', ': '))
//
// which is how the service recomputes the digest. Any change to the output
// of Marshal is a breaking protocol change; bump Version when that happens.
//
// # Usage
//
//	b, err := canonical.Marshal(map[string]any{"b": 1, "a": 2})
//	// b == "{\n    \"a\": 2,\n    \"b\": 1\n}"
//
// A nil payload or an empty map is "absent" and marshals to an empty slice:
//
//	b, err := canonical.Marshal(nil) // len(b) == 0
package canonical
