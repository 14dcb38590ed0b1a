// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package annotate

import "strings"

// KnownConcepts lists the concept types the PubTator export API
// recognizes. Kept for documentation; unknown names are passed through to
// the service rather than rejected locally.
var KnownConcepts = []string{"disease", "gene", "chemical", "mutation", "species", "cellline"}

// NormalizeConcepts splits a comma-separated concept list, trims
// whitespace, and drops empty entries. " disease , chemical ," becomes
// ["disease", "chemical"].
func NormalizeConcepts(s string) []string {
	var concepts []string
	for _, c := range strings.Split(s, ",") {
		c = strings.TrimSpace(c)
		if c != "" {
			concepts = append(concepts, c)
		}
	}
	return concepts
}
