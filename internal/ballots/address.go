package ballots

import (
	"strings"

	"github.com/yungbote/voterguide-backend/internal/domain/civic"
)

// FormatAddress joins address parts the way the civic APIs expect:
// "street, city, state zip".
func FormatAddress(street, city, state, zip string) string {
	base := strings.TrimSpace(street) + ", " + strings.TrimSpace(city) + ", " + strings.TrimSpace(state)
	if zip = strings.TrimSpace(zip); zip != "" {
		return base + " " + zip
	}
	return base
}

// DeriveAddress builds a placeholder street address from the first zip
// code of the jurisdiction's first precinct. It returns "" when no zip
// is known, which leaves address-keyed providers unavailable.
func DeriveAddress(j *civic.Jurisdiction) string {
	if j == nil || len(j.Precincts) == 0 {
		return ""
	}
	zips := j.Precincts[0].ZipCodes
	if len(zips) == 0 || strings.TrimSpace(zips[0]) == "" {
		return ""
	}
	return FormatAddress("Main St", j.Name, j.State, zips[0])
}
