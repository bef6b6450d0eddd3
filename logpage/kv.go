// kv.go
//
// Numeric attribute key to display name tables
//
// Vendor log encodings grow attributes faster than this decoder learns their
// names, so lookup is total: an unknown key still renders, with its hex value
// as the name.
package logpage

import "fmt"

type KV struct {
	Key  uint32
	Name string
}

// KVLookup scans the table in order; first match wins.
func KVLookup(table []KV, key uint32) string {
	for _, kv := range table {
		if kv.Key == key {
			return kv.Name
		}
	}
	return fmt.Sprintf("Attribute %#x", key)
}
