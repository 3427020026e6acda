package publish

import (
	"testing"

	"adbridge/internal/domain"
)

func TestSelectModeCarouselWinsOnSquares(t *testing.T) {
	display := &domain.AssetCandidate{Filename: "banner.png"}
	for _, title := range []string{"Acme: Spring Sale", "Acme Display 300x600", ""} {
		got := SelectMode(title, display, 2, 0, nil)
		if got != domain.ModePostCarousel {
			t.Fatalf("title %q: mode = %s, want post-carousel", title, got)
		}
	}
}

func TestSelectModeCarouselFallbackOnImages(t *testing.T) {
	if got := SelectMode("Acme", nil, 0, 3, nil); got != domain.ModePostCarousel {
		t.Fatalf("mode = %s, want post-carousel", got)
	}
}

func TestSelectModeSingleSquareIsPost(t *testing.T) {
	if got := SelectMode("Acme Display", nil, 1, 1, nil); got != domain.ModePost {
		t.Fatalf("mode = %s, want post", got)
	}
}

func TestSelectModeDisplayByTitleOrAsset(t *testing.T) {
	if got := SelectMode("Acme DISPLAY banner", nil, 0, 1, nil); got != domain.ModeDisplay {
		t.Fatalf("title hint: mode = %s, want display", got)
	}
	display := &domain.AssetCandidate{Filename: "banner.gif"}
	if got := SelectMode("Acme", display, 0, 1, nil); got != domain.ModeDisplay {
		t.Fatalf("display asset: mode = %s, want display", got)
	}
}

func TestSelectModeDefaultsToPost(t *testing.T) {
	if got := SelectMode("Acme", nil, 0, 0, nil); got != domain.ModePost {
		t.Fatalf("mode = %s, want post", got)
	}
}

func TestSelectModeForcedOverridesEverything(t *testing.T) {
	forced := domain.ModeDisplay
	if got := SelectMode("Acme", nil, 5, 5, &forced); got != domain.ModeDisplay {
		t.Fatalf("forced mode ignored, got %s", got)
	}
}

func TestResolvePaidOrganicAlwaysWins(t *testing.T) {
	for _, title := range []string{"Acme Organic Display", "acme ORGANIC post", "organic"} {
		if ResolvePaid(title, true) {
			t.Fatalf("title %q: paid should be false", title)
		}
		if ResolvePaid(title, false) {
			t.Fatalf("title %q: paid should be false regardless of default", title)
		}
	}
	if !ResolvePaid("Acme: Spring Sale", true) {
		t.Fatalf("paid default true should hold without organic hint")
	}
	if ResolvePaid("Acme: Spring Sale", false) {
		t.Fatalf("paid default false should hold without organic hint")
	}
}
