package classify

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"adbridge/internal/domain"
	"adbridge/internal/infra"
)

// DownloadFunc fetches the raw bytes of an attachment from the source
// platform.
type DownloadFunc func(ctx context.Context, att domain.Attachment) ([]byte, error)

// Classifier inspects card attachments and produces the typed candidate
// views the publisher picks media from. A failing download or probe skips
// the single offending attachment; it never aborts classification.
type Classifier struct {
	download DownloadFunc
	prober   DimensionProber
	logger   infra.Logger
}

// Result holds the disjoint-purpose candidate views for one card. The
// source attachment list is never mutated.
type Result struct {
	// SquareAssets are 1:1 candidates ordered rank desc, pixel area desc,
	// filename asc (case-insensitive).
	SquareAssets []domain.AssetCandidate
	// DisplayAsset is the best PNG/GIF for the 300x600 treatment, nil when
	// no PNG/GIF attachment survived download.
	DisplayAsset *domain.AssetCandidate
	// NonDisplayImages are all image candidates without a 300x600 filename
	// hint, in original attachment order.
	NonDisplayImages []domain.AssetCandidate
	// Images are all image candidates in original attachment order.
	Images []domain.AssetCandidate
	// FirstVideo is the first attachment with a recognized video extension.
	FirstVideo *domain.AssetCandidate
	// FirstAttachment is the first attachment of any type, kept as a
	// last-resort fallback.
	FirstAttachment *domain.AssetCandidate
}

const (
	highResSquareA = 1200
	highResSquareB = 1080
)

func NewClassifier(download DownloadFunc, prober DimensionProber, logger infra.Logger) *Classifier {
	return &Classifier{download: download, prober: prober, logger: logger}
}

// Classify downloads every attachment once, probes image dimensions where
// possible, and builds the candidate views.
func (c *Classifier) Classify(ctx context.Context, atts []domain.Attachment) Result {
	var res Result

	type displayScored struct {
		cand  domain.AssetCandidate
		score int
	}
	var displayCandidates []displayScored

	for _, att := range atts {
		data, err := c.download(ctx, att)
		if err != nil {
			c.logger.Warn().Err(err).Str("attachment", att.Name).Msg("classify: asset skipped, download failed")
			continue
		}

		cand := domain.AssetCandidate{Data: data, Filename: att.Name}

		if res.FirstAttachment == nil {
			first := cand
			res.FirstAttachment = &first
		}
		if res.FirstVideo == nil && hasVideoExtension(att.Name) {
			video := cand
			res.FirstVideo = &video
		}
		if !isImage(att) {
			continue
		}

		known := false
		if c.prober != nil {
			w, h, probeErr := c.prober.Probe(data)
			if probeErr != nil {
				c.logger.Warn().Err(probeErr).Str("attachment", att.Name).Msg("classify: dimensions unknown, probe failed")
			} else {
				cand.Width, cand.Height = w, h
				cand.PixelArea = w * h
				known = true
			}
		}

		res.Images = append(res.Images, cand)
		if !hintsDisplayLayout(att.Name) {
			res.NonDisplayImages = append(res.NonDisplayImages, cand)
		}

		switch {
		case known && cand.Width == cand.Height:
			cand.Rank = 1
			if cand.Width == highResSquareA || cand.Width == highResSquareB {
				cand.Rank = 2
			}
			res.SquareAssets = append(res.SquareAssets, cand)
		case hintsSquareLayout(att.Name):
			res.SquareAssets = append(res.SquareAssets, cand)
		case !known && !hintsDisplayLayout(att.Name):
			// Dimensions could not be decoded; keep the image in play as a
			// zero-rank square candidate rather than dropping it.
			res.SquareAssets = append(res.SquareAssets, cand)
		}

		if isDisplayFormat(att) {
			displayCandidates = append(displayCandidates, displayScored{cand: cand, score: displayScore(cand)})
		}
	}

	sortSquares(res.SquareAssets)

	if len(displayCandidates) > 0 {
		cmp := caseInsensitiveCollator()
		sort.SliceStable(displayCandidates, func(i, j int) bool {
			if displayCandidates[i].score != displayCandidates[j].score {
				return displayCandidates[i].score > displayCandidates[j].score
			}
			return cmp.CompareString(displayCandidates[i].cand.Filename, displayCandidates[j].cand.Filename) < 0
		})
		best := displayCandidates[0].cand
		res.DisplayAsset = &best
	}

	return res
}

// displayScore ranks a PNG/GIF for the 300x600 treatment: exact pixel
// match beats a filename hint beats the GIF format.
func displayScore(cand domain.AssetCandidate) int {
	score := 0
	if (cand.Width == 300 && cand.Height == 600) || (cand.Width == 600 && cand.Height == 300) {
		score += 4
	}
	if hintsDisplayLayout(cand.Filename) {
		score += 2
	}
	if strings.EqualFold(filepath.Ext(cand.Filename), ".gif") {
		score++
	}
	return score
}

func sortSquares(squares []domain.AssetCandidate) {
	cmp := caseInsensitiveCollator()
	sort.SliceStable(squares, func(i, j int) bool {
		if squares[i].Rank != squares[j].Rank {
			return squares[i].Rank > squares[j].Rank
		}
		if squares[i].PixelArea != squares[j].PixelArea {
			return squares[i].PixelArea > squares[j].PixelArea
		}
		return cmp.CompareString(squares[i].Filename, squares[j].Filename) < 0
	})
}

func caseInsensitiveCollator() *collate.Collator {
	return collate.New(language.Und, collate.IgnoreCase)
}

var squareHints = []string{"square", "1:1", "1x1", "1200x1200", "1080x1080"}

func hintsSquareLayout(name string) bool {
	lower := strings.ToLower(name)
	for _, hint := range squareHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}

func hintsDisplayLayout(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "300x600") || strings.Contains(lower, "600x300")
}

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

var videoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".m4v":  true,
	".webm": true,
	".avi":  true,
	".mkv":  true,
}

func isImage(att domain.Attachment) bool {
	if strings.HasPrefix(strings.ToLower(att.MimeType), "image/") {
		return true
	}
	return imageExtensions[strings.ToLower(filepath.Ext(att.Name))]
}

func hasVideoExtension(name string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(name))]
}

func isDisplayFormat(att domain.Attachment) bool {
	ext := strings.ToLower(filepath.Ext(att.Name))
	if ext == ".png" || ext == ".gif" {
		return true
	}
	mime := strings.ToLower(att.MimeType)
	return mime == "image/png" || mime == "image/gif"
}
