package models

import (
	"sort"
	"time"

	"github.com/Kyz7/limitless/internal/utils"
	"gorm.io/datatypes"
)

type Post struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	CategoryID     uint           `gorm:"index" json:"category_id"`
	Category       *Category      `gorm:"foreignKey:CategoryID" json:"-"`
	PaperID        uint           `gorm:"index" json:"paper_id"`
	Paper          *Paper         `gorm:"foreignKey:PaperID" json:"-"`
	PosterID       *uint          `gorm:"index" json:"poster_id"`
	PosterName     string         `gorm:"size:255" json:"poster_name"`
	PosterSlug     string         `gorm:"size:255" json:"poster_slug"`
	OriginalText   string         `gorm:"type:text" json:"original"`
	ParsedText     string         `gorm:"type:text" json:"parsed"`
	SearchDocument string         `gorm:"type:text" json:"-"`
	PostedOn       time.Time      `gorm:"index" json:"posted_on"`
	UpdatedOn      *time.Time     `json:"updated_on"`
	HiddenOn       *time.Time     `json:"hidden_on"`
	Edits          int            `json:"edits"`
	HiddenByID     *uint          `json:"hidden_by_id"`
	HiddenByName   string         `gorm:"size:255" json:"hidden_by_name,omitempty"`
	HiddenBySlug   string         `gorm:"size:255" json:"hidden_by_slug,omitempty"`
	HasReports     bool           `json:"has_reports"`
	HasOpenReports bool           `json:"has_open_reports"`
	IsUnapproved   bool           `gorm:"index" json:"is_unapproved"`
	IsHidden       bool           `json:"is_hidden"`
	IsProtected    bool           `json:"is_protected"`
	IsEvent        bool           `gorm:"index" json:"is_event"`
	EventType      string         `gorm:"size:255" json:"event_type,omitempty"`
	EventContext   datatypes.JSON `json:"event_context,omitempty"`
	Likes          int            `json:"likes"`

	ACL *PostACL `gorm:"-" json:"acl,omitempty"`
}

type PostACL struct {
	CanReply      bool `json:"can_reply"`
	CanEdit       bool `json:"can_edit"`
	CanSeeHidden  bool `json:"can_see_hidden"`
	CanUnhide     bool `json:"can_unhide"`
	CanHide       bool `json:"can_hide"`
	CanDelete     bool `json:"can_delete"`
	CanProtect    bool `json:"can_protect"`
	CanApprove    bool `json:"can_approve"`
	CanMove       bool `json:"can_move"`
	CanMerge      bool `json:"can_merge"`
	CanReport     bool `json:"can_report"`
	CanSeeReports bool `json:"can_see_reports"`
	CanSeeLikes   int  `json:"can_see_likes"`
	CanLike       bool `json:"can_like"`
}

// IsFirstPost requires Paper to be loaded.
func (p *Post) IsFirstPost() bool {
	return p.Paper != nil && p.Paper.FirstPostID != nil && *p.Paper.FirstPostID == p.ID
}

// IsBestAnswer requires Paper to be loaded.
func (p *Post) IsBestAnswer() bool {
	return p.Paper != nil && p.Paper.BestAnswerID != nil && *p.Paper.BestAnswerID == p.ID
}

func (p *Post) IsPoster(userID uint) bool {
	return userID != 0 && p.PosterID != nil && *p.PosterID == userID
}

// SamePoster reports whether both posts come from the same author. Guest
// posts are compared by name.
func (p *Post) SamePoster(other *Post) bool {
	if p.PosterID == nil || other.PosterID == nil {
		return p.PosterID == nil && other.PosterID == nil && p.PosterName == other.PosterName
	}
	return *p.PosterID == *other.PosterID
}

// MergeInto appends p's content to other. Both posts must come from the
// same poster.
func (p *Post) MergeInto(other *Post) {
	if p.ID == other.ID {
		panic("post can't be merged with itself")
	}
	if !p.SamePoster(other) {
		panic("post can't be merged with other user's post")
	}

	other.OriginalText = other.OriginalText + "\n\n" + p.OriginalText
	other.ParsedText = other.ParsedText + "\n" + p.ParsedText
	if p.IsProtected {
		other.IsProtected = true
	}
}

func (p *Post) SetHiddenBy(user *User, now time.Time) {
	id := user.ID
	p.IsHidden = true
	p.HiddenOn = &now
	p.HiddenByID = &id
	p.HiddenByName = user.Username
	p.HiddenBySlug = user.Slug
}

func (p *Post) ClearHidden() {
	p.IsHidden = false
	p.HiddenOn = nil
	p.HiddenByID = nil
	p.HiddenByName = ""
	p.HiddenBySlug = ""
}

// UpdateSearchDocument rebuilds the search text, prefixing the paper title
// for first posts.
func (p *Post) UpdateSearchDocument(paperTitle string) {
	text := utils.StripMarkup(p.ParsedText)
	if p.IsFirstPost() {
		text = utils.StripMarkup(paperTitle) + "\n\n" + text
	}
	p.SearchDocument = text
}

func (p *Post) posterSlug() string {
	if p.PosterSlug != "" {
		return p.PosterSlug
	}
	return utils.Slugify(p.PosterName)
}

func sortPostsByID(posts []*Post) {
	sort.Slice(posts, func(i, j int) bool { return posts[i].ID < posts[j].ID })
}

// PostEdit keeps the edit history of a post.
type PostEdit struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CategoryID uint      `gorm:"index" json:"category_id"`
	PaperID    uint      `gorm:"index" json:"paper_id"`
	PostID     uint      `gorm:"index" json:"post_id"`
	EditorID   *uint     `json:"editor_id"`
	EditorName string    `gorm:"size:255" json:"editor_name"`
	EditedFrom string    `gorm:"type:text" json:"edited_from"`
	EditedTo   string    `gorm:"type:text" json:"edited_to"`
	EditedOn   time.Time `json:"edited_on"`
}

type PostLike struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CategoryID uint      `gorm:"index" json:"category_id"`
	PaperID    uint      `gorm:"index" json:"paper_id"`
	PostID     uint      `gorm:"index" json:"post_id"`
	LikerID    *uint     `json:"liker_id"`
	LikerName  string    `gorm:"size:255" json:"liker_name"`
	LikedOn    time.Time `json:"liked_on"`
}
