package models

import "time"

// Comment is a short reply attached to a news item. NewsID is required and
// never changes after creation; updates cannot reparent a comment.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	NewsID    uint      `gorm:"index;not null" json:"news_id"`
	AuthorID  uint      `gorm:"index;not null" json:"author_id"`
	Content   string    `gorm:"size:144;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
	Author    User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
}

// OwnerID identifies the creating user for authorization checks.
func (c *Comment) OwnerID() uint { return c.AuthorID }
