package usecases

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// CleanupService reaps transcode working directories a crashed worker
// left behind. The happy and failure paths clean up after themselves;
// this is the backstop for everything else.
type CleanupService struct {
	tempDir string
	log     *logrus.Logger
}

func NewCleanupService(tempDir string, log *logrus.Logger) *CleanupService {
	return &CleanupService{tempDir: tempDir, log: log}
}

func (s *CleanupService) SweepOldWorkDirs(maxAge time.Duration) error {
	entries, err := os.ReadDir(s.tempDir)
	if err != nil {
		return err
	}

	now := time.Now()
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), "hls_") {
			continue
		}

		dirPath := filepath.Join(s.tempDir, entry.Name())
		info, err := os.Stat(dirPath)
		if err != nil {
			s.log.Warnf("could not stat %s: %v", dirPath, err)
			continue
		}

		if now.Sub(info.ModTime()) > maxAge {
			if err := os.RemoveAll(dirPath); err != nil {
				s.log.Warnf("could not remove %s: %v", dirPath, err)
				continue
			}
			s.log.WithField("dir", dirPath).Info("removed orphaned work dir")
		}
	}
	return nil
}
