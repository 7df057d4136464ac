package transcoder

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"vod-pipeline/pkg/errors"
)

// MasterPlaylistName is the top-level manifest filename; its public
// URL is what a content row's stream URL ultimately points at.
const MasterPlaylistName = "master.m3u8"

// WriteMasterPlaylist writes the top-level manifest referencing every
// rendition playlist, then verifies each referenced playlist actually
// exists on disk. A manifest with dead links is worse than a failed
// job, so verification failure fails the transcode.
func WriteMasterPlaylist(outputDir string, renditions []Rendition) (string, error) {
	ordered := make([]Rendition, len(renditions))
	copy(ordered, renditions)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Height < ordered[j].Height })

	var b strings.Builder
	b.WriteString("#EXTM3U\n#EXT-X-VERSION:3\n\n")
	for _, r := range ordered {
		bandwidth := r.Bitrate * 1000 // kbps -> bits/second
		fmt.Fprintf(&b, "#EXT-X-STREAM-INF:BANDWIDTH=%d,RESOLUTION=%dx%d,NAME=\"%s\"\n", bandwidth, r.Width, r.Height, r.Name)
		fmt.Fprintf(&b, "%s/%s\n\n", r.Name, PlaylistName)
	}

	masterPath := filepath.Join(outputDir, MasterPlaylistName)
	if err := os.WriteFile(masterPath, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write master playlist: %w", err)
	}

	for _, r := range ordered {
		playlist := filepath.Join(outputDir, r.Name, PlaylistName)
		if _, err := os.Stat(playlist); err != nil {
			return "", errors.ErrIncompleteOutput(r.Name)
		}
	}

	return masterPath, nil
}

// TreeSize sums the file sizes under dir; used to backfill the content
// size once the rendition tree is complete.
func TreeSize(dir string) (int64, error) {
	var total int64
	err := filepath.Walk(dir, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			total += info.Size()
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}
