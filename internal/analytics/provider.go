/**
 * @description
 * Provider name normalization.
 * Provider names arrive as free text from ingestion; every boundary where a
 * name enters the aggregation engine goes through CanonicalProvider so new
 * providers need one alias-table edit, not scattered string comparisons.
 *
 * @dependencies
 * - standard "strings"
 */

package analytics

import (
	"strings"
)

// providerAlias maps lower-cased provider names that are not usable as keys in
// downstream consumers to a stable canonical form. "0x" starts with a digit,
// which JS property shorthand and several BI tools choke on.
var providerAlias = map[string]string{
	"0x": "zerox",
}

// CanonicalProvider returns the canonical key for a raw provider name:
// trimmed, lower-cased, and aliased. Empty input stays empty.
func CanonicalProvider(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := providerAlias[key]; ok {
		return alias
	}
	return key
}
