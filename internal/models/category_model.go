package models

import "time"

const (
	CategoryRoot          = "root_category"
	CategoryPrivatePapers = "private_papers"
)

type Category struct {
	ID                     uint       `gorm:"primaryKey" json:"id"`
	ParentID               *uint      `gorm:"index" json:"parent_id"`
	Special                string     `gorm:"size:30;index" json:"special,omitempty"`
	Name                   string     `gorm:"size:255" json:"name"`
	Slug                   string     `gorm:"size:255" json:"slug"`
	Description            string     `gorm:"type:text" json:"description,omitempty"`
	IsClosed               bool       `json:"is_closed"`
	RequirePapersApproval  bool       `json:"require_papers_approval"`
	RequireRepliesApproval bool       `json:"require_replies_approval"`
	RequireEditsApproval   bool       `json:"require_edits_approval"`
	Papers                 int        `json:"papers"`
	Posts                  int        `json:"posts"`
	LastPostOn             *time.Time `json:"last_post_on"`
	LastPaperID            *uint      `json:"last_paper_id"`
	LastPaperTitle         string     `gorm:"size:255" json:"last_paper_title,omitempty"`
	LastPaperSlug          string     `gorm:"size:255" json:"last_paper_slug,omitempty"`
	LastPosterID           *uint      `json:"last_poster_id"`
	LastPosterName         string     `gorm:"size:255" json:"last_poster_name,omitempty"`
	LastPosterSlug         string     `gorm:"size:255" json:"last_poster_slug,omitempty"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

func (c *Category) IsPrivatePapers() bool {
	return c.Special == CategoryPrivatePapers
}

func (c *Category) SetLastPaper(p *Paper) {
	on := p.LastPostOn
	id := p.ID
	c.LastPostOn = &on
	c.LastPaperID = &id
	c.LastPaperTitle = p.Title
	c.LastPaperSlug = p.Slug
	c.LastPosterID = p.LastPosterID
	c.LastPosterName = p.LastPosterName
	c.LastPosterSlug = p.LastPosterSlug
}

func (c *Category) EmptyLastPaper() {
	c.LastPostOn = nil
	c.LastPaperID = nil
	c.LastPaperTitle = ""
	c.LastPaperSlug = ""
	c.LastPosterID = nil
	c.LastPosterName = ""
	c.LastPosterSlug = ""
}

// Synchronize recomputes counters and the last paper snapshot from the
// category's papers. Hidden and unapproved papers are not counted.
func (c *Category) Synchronize(papers []Paper) {
	c.Papers = 0
	c.Posts = 0

	var last *Paper
	for i := range papers {
		p := &papers[i]
		if p.IsHidden || p.IsUnapproved {
			continue
		}
		c.Papers++
		c.Posts += p.Replies + 1
		if last == nil || p.LastPostOn.After(last.LastPostOn) ||
			(p.LastPostOn.Equal(last.LastPostOn) && p.ID > last.ID) {
			last = p
		}
	}

	if last == nil {
		c.EmptyLastPaper()
		return
	}
	c.SetLastPaper(last)
}
