// kv_test.go
package logpage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKVLookup(t *testing.T) {
	table := []KV{
		{Key: 0x0000, Name: "Corrected Without Delay"},
		{Key: 0x8000, Name: "Flash Write Commands"},
		{Key: 0x8000, Name: "Shadowed"},
	}

	assert.Equal(t, "Corrected Without Delay", KVLookup(table, 0x0000))
	// First match wins over later duplicates
	assert.Equal(t, "Flash Write Commands", KVLookup(table, 0x8000))

	// Unknown keys still render, as their hex value
	assert.Equal(t, "Attribute 0xad", KVLookup(table, 0xad))
	assert.Equal(t, "Attribute 0x1234", KVLookup(nil, 0x1234))
	assert.Equal(t, "Attribute 0x0", KVLookup(nil, 0))
}
