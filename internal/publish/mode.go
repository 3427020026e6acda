package publish

import (
	"strings"

	"adbridge/internal/domain"
)

// SelectMode applies the publish-mode ladder. The order is a business
// rule: carousels win whenever enough multi-image evidence exists, before
// the single-post and display treatments.
func SelectMode(title string, displayAsset *domain.AssetCandidate, squareCount, nonDisplayImageCount int, forced *domain.Mode) domain.Mode {
	if forced != nil {
		return *forced
	}
	if squareCount >= 2 {
		return domain.ModePostCarousel
	}
	if nonDisplayImageCount >= 2 {
		return domain.ModePostCarousel
	}
	if squareCount == 1 {
		return domain.ModePost
	}
	if strings.Contains(strings.ToLower(title), "display") || displayAsset != nil {
		return domain.ModeDisplay
	}
	return domain.ModePost
}

// ResolvePaid derives the paid flag: the card title saying "organic"
// always wins over the configured default.
func ResolvePaid(title string, paidDefault bool) bool {
	if strings.Contains(strings.ToLower(title), "organic") {
		return false
	}
	return paidDefault
}
