package permissions

import (
	"slices"
	"strings"

	"github.com/Kyz7/limitless/internal/acl"
	"github.com/Kyz7/limitless/internal/models"
	"gorm.io/gorm"
)

// PaperFilter is the batch form of AllowSeePaper. Categories are split into
// tiers by what the user may see in them, and a paper is visible when its
// category's tier condition holds.
type PaperFilter struct {
	userID        uint
	authenticated bool

	showAll         []uint
	acceptedVisible []uint
	accepted        []uint
	visible         []uint
	owned           []uint
	ownedVisible    []uint
}

func NewPaperFilter(user *acl.UserACL, categoryIDs []uint) PaperFilter {
	f := PaperFilter{userID: user.UserID, authenticated: user.IsAuthenticated}

	for _, id := range categoryIDs {
		cat, ok := user.Categories[id]
		if !ok || cat.CanSee == 0 || cat.CanBrowse == 0 {
			continue
		}

		// Guests never see hidden papers.
		canHide := user.IsAuthenticated && cat.CanHidePapers > 0
		canMod := cat.CanApproveContent > 0
		switch {
		case cat.CanSeeAllPapers > 0 && canMod && canHide:
			f.showAll = append(f.showAll, id)
		case cat.CanSeeAllPapers > 0 && !canMod && !canHide:
			f.acceptedVisible = append(f.acceptedVisible, id)
		case cat.CanSeeAllPapers > 0 && !canMod:
			f.accepted = append(f.accepted, id)
		case cat.CanSeeAllPapers > 0:
			f.visible = append(f.visible, id)
		case !user.IsAuthenticated:
		case canHide:
			f.owned = append(f.owned, id)
		default:
			f.ownedVisible = append(f.ownedVisible, id)
		}
	}
	return f
}

// Empty reports whether no paper can pass the filter.
func (f PaperFilter) Empty() bool {
	return len(f.showAll)+len(f.acceptedVisible)+len(f.accepted)+len(f.visible)+len(f.owned)+len(f.ownedVisible) == 0
}

// Match evaluates the filter against one paper in memory.
func (f PaperFilter) Match(p *models.Paper) bool {
	starter := f.authenticated && p.IsStarter(f.userID)
	id := p.CategoryID

	switch {
	case slices.Contains(f.showAll, id):
		return true
	case slices.Contains(f.acceptedVisible, id):
		if !f.authenticated {
			return !p.IsUnapproved && !p.IsHidden
		}
		return (starter || !p.IsUnapproved) && !p.IsHidden
	case slices.Contains(f.accepted, id):
		return starter || !p.IsUnapproved
	case slices.Contains(f.visible, id):
		return !p.IsHidden
	case slices.Contains(f.owned, id):
		return starter
	case slices.Contains(f.ownedVisible, id):
		return starter && !p.IsHidden
	}
	return false
}

// Apply narrows query, which must select from papers, to visible rows.
func (f PaperFilter) Apply(query *gorm.DB) *gorm.DB {
	var conds []string
	var args []any

	if len(f.showAll) > 0 {
		conds = append(conds, "papers.category_id IN ?")
		args = append(args, f.showAll)
	}
	if len(f.acceptedVisible) > 0 {
		if f.authenticated {
			conds = append(conds, "(papers.category_id IN ? AND (papers.starter_id = ? OR papers.is_unapproved = ?) AND papers.is_hidden = ?)")
			args = append(args, f.acceptedVisible, f.userID, false, false)
		} else {
			conds = append(conds, "(papers.category_id IN ? AND papers.is_unapproved = ? AND papers.is_hidden = ?)")
			args = append(args, f.acceptedVisible, false, false)
		}
	}
	if len(f.accepted) > 0 {
		conds = append(conds, "(papers.category_id IN ? AND (papers.starter_id = ? OR papers.is_unapproved = ?))")
		args = append(args, f.accepted, f.userID, false)
	}
	if len(f.visible) > 0 {
		conds = append(conds, "(papers.category_id IN ? AND papers.is_hidden = ?)")
		args = append(args, f.visible, false)
	}
	if len(f.owned) > 0 {
		conds = append(conds, "(papers.category_id IN ? AND papers.starter_id = ?)")
		args = append(args, f.owned, f.userID)
	}
	if len(f.ownedVisible) > 0 {
		conds = append(conds, "(papers.category_id IN ? AND papers.starter_id = ? AND papers.is_hidden = ?)")
		args = append(args, f.ownedVisible, f.userID, false)
	}

	if len(conds) == 0 {
		return query.Where("1 = 0")
	}
	return query.Where("("+strings.Join(conds, " OR ")+")", args...)
}

// ExcludeInvisiblePapers narrows query to papers user may see within
// categoryIDs.
func ExcludeInvisiblePapers(user *acl.UserACL, categoryIDs []uint, query *gorm.DB) *gorm.DB {
	return NewPaperFilter(user, categoryIDs).Apply(query)
}

// PostFilter is the batch form of AllowSeePost.
type PostFilter struct {
	userID        uint
	authenticated bool

	showAll       []uint
	approved      []uint
	approvedOwned []uint
	hideEvents    []uint
}

func NewPostFilter(user *acl.UserACL, categoryIDs []uint) PostFilter {
	f := PostFilter{userID: user.UserID, authenticated: user.IsAuthenticated}

	for _, id := range categoryIDs {
		cat := user.Category(id)
		switch {
		case cat.CanApproveContent > 0 && user.IsAuthenticated:
			f.showAll = append(f.showAll, id)
		case user.IsAuthenticated:
			f.approvedOwned = append(f.approvedOwned, id)
		default:
			f.approved = append(f.approved, id)
		}
		if cat.CanHideEvents == 0 {
			f.hideEvents = append(f.hideEvents, id)
		}
	}
	return f
}

func (f PostFilter) Match(p *models.Post) bool {
	id := p.CategoryID
	if p.IsEvent && p.IsHidden && slices.Contains(f.hideEvents, id) {
		return false
	}

	switch {
	case slices.Contains(f.showAll, id):
		return true
	case slices.Contains(f.approved, id):
		return p.IsEvent || !p.IsUnapproved
	case slices.Contains(f.approvedOwned, id):
		return p.IsEvent || !p.IsUnapproved || p.IsPoster(f.userID)
	}
	return false
}

// Apply narrows query, which must select from posts, to visible rows.
func (f PostFilter) Apply(query *gorm.DB) *gorm.DB {
	var conds []string
	var args []any

	if len(f.showAll) > 0 {
		conds = append(conds, "posts.category_id IN ?")
		args = append(args, f.showAll)
	}
	if len(f.approved) > 0 {
		conds = append(conds, "(posts.category_id IN ? AND (posts.is_event = ? OR posts.is_unapproved = ?))")
		args = append(args, f.approved, true, false)
	}
	if len(f.approvedOwned) > 0 {
		conds = append(conds, "(posts.category_id IN ? AND (posts.is_event = ? OR posts.is_unapproved = ? OR posts.poster_id = ?))")
		args = append(args, f.approvedOwned, true, false, f.userID)
	}

	if len(conds) == 0 {
		return query.Where("1 = 0")
	}
	query = query.Where("("+strings.Join(conds, " OR ")+")", args...)

	if len(f.hideEvents) > 0 {
		query = query.Where("NOT (posts.category_id IN ? AND posts.is_event = ? AND posts.is_hidden = ?)", f.hideEvents, true, true)
	}
	return query
}

func ExcludeInvisiblePosts(user *acl.UserACL, categoryIDs []uint, query *gorm.DB) *gorm.DB {
	return NewPostFilter(user, categoryIDs).Apply(query)
}

func ExcludeInvisiblePostsInCategory(user *acl.UserACL, categoryID uint, query *gorm.DB) *gorm.DB {
	return NewPostFilter(user, []uint{categoryID}).Apply(query)
}
