package models

type PaperParticipant struct {
	ID      uint  `gorm:"primaryKey" json:"id"`
	PaperID uint  `gorm:"uniqueIndex:idx_paper_participant" json:"paper_id"`
	UserID  uint  `gorm:"uniqueIndex:idx_paper_participant" json:"user_id"`
	User    *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	IsOwner bool  `json:"is_owner"`
}

// Subscription marks a paper the user follows for new replies.
type Subscription struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	UserID     uint `gorm:"uniqueIndex:idx_user_paper" json:"user_id"`
	PaperID    uint `gorm:"uniqueIndex:idx_user_paper" json:"paper_id"`
	CategoryID uint `gorm:"index" json:"category_id"`
	SendEmail  bool `json:"send_email"`
}
