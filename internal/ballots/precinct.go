package ballots

import "github.com/yungbote/voterguide-backend/internal/domain/civic"

// NearestPrecinct returns the precinct whose center is closest to
// (lat, lng) by planar distance in degrees. Precincts without a center
// are ignored; ties keep the earlier precinct.
func NearestPrecinct(lat, lng float64, precincts []civic.Precinct) (*civic.Precinct, bool) {
	best := -1
	bestDist := 0.0
	for i := range precincts {
		p := &precincts[i]
		if !p.HasCenter() {
			continue
		}
		dLat := *p.Lat - lat
		dLng := *p.Lng - lng
		// Squared distance orders the same as Euclidean distance.
		d := dLat*dLat + dLng*dLng
		if best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return nil, false
	}
	return &precincts[best], true
}
