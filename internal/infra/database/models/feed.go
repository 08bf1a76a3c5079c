package models

import (
	"time"
)

type Thought struct {
	ID             string    `json:"id" gorm:"primaryKey;type:text"`
	UserID         string    `json:"userId" gorm:"type:text;index;not null"`
	AuthorName     string    `json:"authorName" gorm:"type:text;not null"`
	AuthorAvatar   *string   `json:"authorAvatar" gorm:"type:text"`
	Content        string    `json:"content" gorm:"type:text;not null"`
	ImageURL       *string   `json:"imageUrl" gorm:"type:text"`
	RelatableCount int64     `json:"relatableCount" gorm:"type:bigint;not null;default:0"`
	CDate          time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp();index"`
}

type Reaction struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	ThoughtID string    `json:"thoughtId" gorm:"type:text;uniqueIndex:uniq_reaction;not null"`
	Thought   Thought   `json:"-" gorm:"foreignKey:ThoughtID;references:ID;constraint:OnDelete:CASCADE;"`
	UserID    string    `json:"userId" gorm:"type:text;uniqueIndex:uniq_reaction;index;not null"`
	CDate     time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}
