package cache

import "fmt"

// FilterKey builds the discovery-namespace key from translated filter values:
// "{providerID}_{genreID}_{languageCode}_{minRuntime}_{maxRuntime}".
func FilterKey(providerID, genreID int64, languageCode string, minRuntime, maxRuntime int) string {
	return fmt.Sprintf("%d_%d_%s_%d_%d", providerID, genreID, languageCode, minRuntime, maxRuntime)
}
