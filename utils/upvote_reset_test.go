package utils_test

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"newswire/models"
	"newswire/utils"
)

func newResetDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.User{}, &models.News{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestResetUpVotesClearsAllCounters(t *testing.T) {
	db := newResetDB(t)

	author := models.User{Email: "author@example.com", PasswordHash: "x"}
	if err := db.Create(&author).Error; err != nil {
		t.Fatalf("create author: %v", err)
	}
	items := []models.News{
		{AuthorID: author.ID, Title: "first", Link: "https://example.com/1", UpVotes: 3},
		{AuthorID: author.ID, Title: "second", Link: "https://example.com/2", UpVotes: 7},
		{AuthorID: author.ID, Title: "third", Link: "https://example.com/3", UpVotes: 0},
	}
	if err := db.Create(&items).Error; err != nil {
		t.Fatalf("create news: %v", err)
	}

	cleared, err := utils.ResetUpVotes(db)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if cleared != 2 {
		t.Fatalf("cleared = %d, want 2 (already-zero rows stay untouched)", cleared)
	}

	var remaining int64
	if err := db.Model(&models.News{}).Where("up_votes <> 0").Count(&remaining).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if remaining != 0 {
		t.Fatalf("%d news items still carry votes after reset", remaining)
	}

	var total int64
	if err := db.Model(&models.News{}).Count(&total).Error; err != nil {
		t.Fatalf("count all: %v", err)
	}
	if total != 3 {
		t.Fatalf("reset must never delete rows, %d of 3 left", total)
	}
}

func TestResetUpVotesOnEmptyTable(t *testing.T) {
	db := newResetDB(t)

	cleared, err := utils.ResetUpVotes(db)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if cleared != 0 {
		t.Fatalf("cleared = %d, want 0", cleared)
	}
}
