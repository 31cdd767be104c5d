package cache

import "fmt"

// Key layout. Every reader and every invalidation goes through these helpers
// so the two sides can never drift apart.
const (
	ProvincesAllKey    = "provinces:all"
	HotspotsAllKey     = "hotspots:all"
	LeaderboardPattern = "leaderboard:*"
)

// ProvinceKey is the detail key of a province
func ProvinceKey(id string) string {
	return "province:" + id
}

// HotspotKey is the detail key of a hotspot
func HotspotKey(id string) string {
	return "hotspot:" + id
}

// HotspotsByProvinceKey groups the hotspots of one province
func HotspotsByProvinceKey(provinceID string) string {
	return "hotspots:province:" + provinceID
}

// LeaderboardKey caches one page size of the leaderboard
func LeaderboardKey(limit int) string {
	return fmt.Sprintf("leaderboard:top:%d", limit)
}

// ProvinceKeys lists every key that can hold a view of the province.
// The province detail embeds its hotspots, so the grouping key goes too.
func ProvinceKeys(id string) []string {
	return []string{ProvincesAllKey, ProvinceKey(id), HotspotsByProvinceKey(id)}
}

// HotspotKeys lists every key that can hold a view of a hotspot owned by
// provinceID. Pass an empty id on create, when no detail key exists yet.
// Province views embed hotspot data (detail) or counts (list), so they are
// included.
func HotspotKeys(id, provinceID string) []string {
	keys := []string{HotspotsAllKey}
	if id != "" {
		keys = append(keys, HotspotKey(id))
	}
	if provinceID != "" {
		keys = append(keys, HotspotsByProvinceKey(provinceID), ProvinceKey(provinceID), ProvincesAllKey)
	}
	return keys
}
