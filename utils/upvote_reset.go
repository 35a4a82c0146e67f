package utils

import (
	"time"

	"gorm.io/gorm"

	"newswire/models"
)

// StartUpvoteReset launches a background goroutine that periodically zeroes
// every news item's upvote counter. It is best-effort: a lost or duplicate
// run only shifts when counters return to zero, so no coordination lock is
// taken and failures are logged and skipped.
func StartUpvoteReset(db *gorm.DB, interval time.Duration) {
	if db == nil || interval <= 0 {
		return
	}
	go func() {
		for {
			// sleep first to avoid racing startup migrations
			time.Sleep(interval)
			cleared, err := ResetUpVotes(db)
			if err != nil {
				Sugar.Errorf("upvote reset failed: %v", err)
				continue
			}
			Sugar.Infof("upvote reset cleared %d news items", cleared)
		}
	}()
}

// ResetUpVotes zeroes every nonzero vote counter in one statement and
// reports how many rows changed.
func ResetUpVotes(db *gorm.DB) (int64, error) {
	res := db.Model(&models.News{}).Where("up_votes <> ?", 0).UpdateColumn("up_votes", 0)
	return res.RowsAffected, res.Error
}
