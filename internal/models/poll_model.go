package models

import (
	"time"

	"gorm.io/datatypes"
)

type Poll struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CategoryID   uint           `gorm:"index" json:"category_id"`
	PaperID      uint           `gorm:"uniqueIndex" json:"paper_id"`
	PosterID     *uint          `json:"poster_id"`
	PosterName   string         `gorm:"size:255" json:"poster_name"`
	PostedOn     time.Time      `json:"posted_on"`
	Length       int            `json:"length"`
	Question     string         `gorm:"size:255" json:"question"`
	Choices      datatypes.JSON `json:"choices"`
	AllowedVotes int            `json:"allowed_votes"`
	Votes        int            `json:"votes"`
	IsPublic     bool           `json:"is_public"`
}

type PollVote struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CategoryID uint      `gorm:"index" json:"category_id"`
	PaperID    uint      `gorm:"index" json:"paper_id"`
	PollID     uint      `gorm:"index" json:"poll_id"`
	VoterID    *uint     `json:"voter_id"`
	VoterName  string    `gorm:"size:255" json:"voter_name"`
	ChoiceHash string    `gorm:"size:12" json:"choice_hash"`
	VotedOn    time.Time `json:"voted_on"`
}
