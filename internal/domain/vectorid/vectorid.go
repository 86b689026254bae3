// Package vectorid derives stable identifiers for vectors submitted without one.
package vectorid

import (
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/kailas-cloud/vecgate/internal/domain/vector"
)

// Derive hashes namespace and input with xxHash64 and returns 16 hex chars.
// The result is identical across processes and restarts.
func Derive(namespace, input string) string {
	d := xxhash.New()
	_, _ = d.WriteString(namespace)
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(input)

	id := strconv.FormatUint(d.Sum64(), 16)
	for len(id) < 16 {
		id = "0" + id
	}
	return id
}

// Resolve returns the item's explicit id or derives one from its source.
func Resolve(item *vector.Item) string {
	if id := item.ID(); id != "" {
		return id
	}
	return Derive(item.Namespace(), item.Source().Canonical())
}
