package render

import "strings"

// ArtifactStem derives the filesystem-safe stem used to name both output
// artifacts for a country: lowercase, spaces replaced with underscores.
func ArtifactStem(displayName string) string {
	name := strings.ToLower(strings.TrimSpace(displayName))
	return "rivers_of_" + strings.ReplaceAll(name, " ", "_")
}
