package models

import "time"

// News is a submitted link. AuthorID and CreatedAt are set once at creation
// and never change. UpVotes only moves through the atomic increment and the
// periodic reset; it is never client-writable.
type News struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AuthorID  uint      `gorm:"index;not null" json:"author_id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Link      string    `gorm:"size:512;not null" json:"link"`
	UpVotes   int       `gorm:"not null;default:0" json:"up_votes"`
	CreatedAt time.Time `json:"created_at"`
	Author    User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	Comments  []Comment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"comments,omitempty"`
}

// OwnerID identifies the creating user for authorization checks.
func (n *News) OwnerID() uint { return n.AuthorID }
