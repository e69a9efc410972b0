package models

import (
	"time"

	"github.com/Kyz7/limitless/internal/utils"
)

const (
	WeightDefault = 0
	WeightPinned  = 1
	WeightGlobal  = 2
)

type Paper struct {
	ID                     uint       `gorm:"primaryKey" json:"id"`
	CategoryID             uint       `gorm:"index" json:"category_id"`
	Category               *Category  `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Title                  string     `gorm:"size:255" json:"title"`
	Slug                   string     `gorm:"size:255" json:"slug"`
	Replies                int        `gorm:"index" json:"replies"`
	HasEvents              bool       `json:"has_events"`
	HasPoll                bool       `json:"has_poll"`
	HasReportedPosts       bool       `json:"has_reported_posts"`
	HasOpenReports         bool       `json:"has_open_reports"`
	HasUnapprovedPosts     bool       `json:"has_unapproved_posts"`
	HasHiddenPosts         bool       `json:"has_hidden_posts"`
	StartedOn              time.Time  `gorm:"index" json:"started_on"`
	LastPostOn             time.Time  `gorm:"index" json:"last_post_on"`
	FirstPostID            *uint      `json:"first_post_id"`
	StarterID              *uint      `gorm:"index" json:"starter_id"`
	StarterName            string     `gorm:"size:255" json:"starter_name"`
	StarterSlug            string     `gorm:"size:255" json:"starter_slug"`
	LastPostID             *uint      `json:"last_post_id"`
	LastPostIsEvent        bool       `json:"last_post_is_event"`
	LastPosterID           *uint      `json:"last_poster_id"`
	LastPosterName         string     `gorm:"size:255" json:"last_poster_name"`
	LastPosterSlug         string     `gorm:"size:255" json:"last_poster_slug"`
	Weight                 int        `gorm:"index" json:"weight"`
	IsUnapproved           bool       `gorm:"index" json:"is_unapproved"`
	IsHidden               bool       `json:"is_hidden"`
	IsClosed               bool       `json:"is_closed"`
	BestAnswerID           *uint      `json:"best_answer_id"`
	BestAnswerIsProtected  bool       `json:"best_answer_is_protected"`
	BestAnswerMarkedOn     *time.Time `json:"best_answer_marked_on"`
	BestAnswerMarkedByID   *uint      `json:"best_answer_marked_by_id"`
	BestAnswerMarkedByName string     `gorm:"size:255" json:"best_answer_marked_by_name,omitempty"`
	BestAnswerMarkedBySlug string     `gorm:"size:255" json:"best_answer_marked_by_slug,omitempty"`
	Poll                   *Poll      `gorm:"foreignKey:PaperID" json:"poll,omitempty"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`

	ACL              *PaperACL          `gorm:"-" json:"acl,omitempty"`
	ParticipantsList []PaperParticipant `gorm:"-" json:"participants,omitempty"`
}

// PaperACL is the per-object permission summary attached by the ACL decorators.
type PaperACL struct {
	CanReply           bool `json:"can_reply"`
	CanEdit            bool `json:"can_edit"`
	CanPin             bool `json:"can_pin"`
	CanPinGlobally     bool `json:"can_pin_globally"`
	CanHide            bool `json:"can_hide"`
	CanUnhide          bool `json:"can_unhide"`
	CanDelete          bool `json:"can_delete"`
	CanClose           bool `json:"can_close"`
	CanMove            bool `json:"can_move"`
	CanMerge           bool `json:"can_merge"`
	CanMovePosts       bool `json:"can_move_posts"`
	CanMergePosts      bool `json:"can_merge_posts"`
	CanApprove         bool `json:"can_approve"`
	CanSeeReports      bool `json:"can_see_reports"`
	CanStartPoll       bool `json:"can_start_poll"`
	CanChangeOwner     bool `json:"can_change_owner"`
	CanAddParticipants bool `json:"can_add_participants"`
}

// IsPrivate requires Category to be loaded.
func (p *Paper) IsPrivate() bool {
	return p.Category != nil && p.Category.IsPrivatePapers()
}

// ParticipantFor finds userID in ParticipantsList, which must be loaded.
func (p *Paper) ParticipantFor(userID uint) *PaperParticipant {
	for i := range p.ParticipantsList {
		if p.ParticipantsList[i].UserID == userID {
			return &p.ParticipantsList[i]
		}
	}
	return nil
}

func (p *Paper) IsOwner(userID uint) bool {
	participant := p.ParticipantFor(userID)
	return participant != nil && participant.IsOwner
}

func (p *Paper) CategoryIsClosed() bool {
	return p.Category != nil && p.Category.IsClosed
}

func (p *Paper) IsStarter(userID uint) bool {
	return userID != 0 && p.StarterID != nil && *p.StarterID == userID
}

func (p *Paper) HasBestAnswer() bool {
	return p.BestAnswerID != nil
}

func (p *Paper) SetTitle(title string) {
	p.Title = title
	p.Slug = utils.Slugify(title)
}

func (p *Paper) SetFirstPost(post *Post) {
	id := post.ID
	p.StartedOn = post.PostedOn
	p.FirstPostID = &id
	p.StarterID = post.PosterID
	p.StarterName = post.PosterName
	p.StarterSlug = post.posterSlug()
	p.IsUnapproved = post.IsUnapproved
	p.IsHidden = post.IsHidden
}

func (p *Paper) SetLastPost(post *Post) {
	id := post.ID
	p.LastPostOn = post.PostedOn
	p.LastPostIsEvent = post.IsEvent
	p.LastPostID = &id
	p.LastPosterID = post.PosterID
	p.LastPosterName = post.PosterName
	p.LastPosterSlug = post.posterSlug()
}

// SetBestAnswer panics when post can't be a best answer of p; callers are
// expected to have validated the post first.
func (p *Paper) SetBestAnswer(user *User, post *Post, now time.Time) {
	if post.PaperID != p.ID {
		panic("post to set as best answer must be in same paper")
	}
	if p.FirstPostID != nil && *p.FirstPostID == post.ID {
		panic("post to set as best answer can't be first post")
	}
	if post.IsHidden {
		panic("post to set as best answer can't be hidden")
	}
	if post.IsUnapproved {
		panic("post to set as best answer can't be unapproved")
	}

	postID, userID := post.ID, user.ID
	p.BestAnswerID = &postID
	p.BestAnswerIsProtected = post.IsProtected
	p.BestAnswerMarkedOn = &now
	p.BestAnswerMarkedByID = &userID
	p.BestAnswerMarkedByName = user.Username
	p.BestAnswerMarkedBySlug = user.Slug
}

func (p *Paper) ClearBestAnswer() {
	p.BestAnswerID = nil
	p.BestAnswerIsProtected = false
	p.BestAnswerMarkedOn = nil
	p.BestAnswerMarkedByID = nil
	p.BestAnswerMarkedByName = ""
	p.BestAnswerMarkedBySlug = ""
}

// CopyBestAnswer takes over the best answer snapshot of other.
func (p *Paper) CopyBestAnswer(other *Paper) {
	p.BestAnswerID = other.BestAnswerID
	p.BestAnswerIsProtected = other.BestAnswerIsProtected
	p.BestAnswerMarkedOn = other.BestAnswerMarkedOn
	p.BestAnswerMarkedByID = other.BestAnswerMarkedByID
	p.BestAnswerMarkedByName = other.BestAnswerMarkedByName
	p.BestAnswerMarkedBySlug = other.BestAnswerMarkedBySlug
}

// Synchronize recomputes the denormalized fields from posts, which must be
// every post of the paper. It has no side effects besides mutating p.
func (p *Paper) Synchronize(posts []Post, hasPoll bool) {
	ordered := make([]*Post, len(posts))
	for i := range posts {
		ordered[i] = &posts[i]
	}
	sortPostsByID(ordered)

	p.HasPoll = hasPoll
	p.Replies = 0
	p.HasReportedPosts = false
	p.HasOpenReports = false
	p.HasUnapprovedPosts = false
	p.HasHiddenPosts = false
	p.HasEvents = false

	if len(ordered) == 0 {
		return
	}

	first := ordered[0]
	var last *Post
	anyEvent := false
	for _, post := range ordered {
		if !post.IsEvent && !post.IsUnapproved {
			p.Replies++
		}
		if post.HasReports {
			p.HasReportedPosts = true
		}
		if post.HasOpenReports {
			p.HasOpenReports = true
		}
		if post.IsUnapproved {
			p.HasUnapprovedPosts = true
		} else {
			last = post
		}
		if post.IsHidden {
			p.HasHiddenPosts = true
		}
		if post.IsEvent {
			anyEvent = true
		}
	}
	if !p.HasReportedPosts {
		p.HasOpenReports = false
	}
	if !first.IsEvent && !first.IsUnapproved && p.Replies > 0 {
		p.Replies--
	}

	p.SetFirstPost(first)
	if last != nil {
		p.SetLastPost(last)
	} else {
		p.SetLastPost(first)
	}
	p.HasEvents = anyEvent
}
