package transcoder

import (
	"fmt"
	"math"

	"vod-pipeline/pkg/errors"
)

// Rendition is one (resolution, bitrate) output of the ladder. Width
// is derived from the source aspect ratio at planning time.
type Rendition struct {
	Name    string
	Height  int
	Bitrate int // target video bitrate, kbps
	Width   int
}

// Catalog is the fixed rendition ladder, ascending by height. Planning
// preserves this order, which also fixes the master playlist order.
var Catalog = []Rendition{
	{Name: "360p", Height: 360, Bitrate: 800},
	{Name: "480p", Height: 480, Bitrate: 1400},
	{Name: "720p", Height: 720, Bitrate: 2800},
	{Name: "1080p", Height: 1080, Bitrate: 5000},
}

// PlanLadder selects every catalog entry whose height does not exceed
// the source height. A source smaller than the smallest entry cannot
// be transcoded.
func PlanLadder(info VideoInfo) ([]Rendition, error) {
	if info.Width <= 0 || info.Height <= 0 {
		return nil, errors.ErrProbe(fmt.Errorf("invalid source dimensions %dx%d", info.Width, info.Height))
	}

	planned := make([]Rendition, 0, len(Catalog))
	for _, candidate := range Catalog {
		if candidate.Height > info.Height {
			continue
		}
		candidate.Width = renditionWidth(info.Width, info.Height, candidate.Height)
		planned = append(planned, candidate)
	}

	if len(planned) == 0 {
		return nil, errors.ErrNoEligibleRendition(info.Height)
	}
	return planned, nil
}

// renditionWidth keeps the source aspect ratio and forces the result
// even; odd widths break chroma subsampling in common codecs.
func renditionWidth(sourceWidth, sourceHeight, targetHeight int) int {
	aspect := float64(sourceWidth) / float64(sourceHeight)
	width := int(math.Round(float64(targetHeight) * aspect))
	if width%2 != 0 {
		width--
	}
	return width
}
