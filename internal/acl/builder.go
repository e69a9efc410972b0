package acl

import (
	"sort"

	"github.com/Kyz7/limitless/internal/models"
)

// BuildInput carries everything the builder folds into a document.
// CategoryRoles maps a category id to the category roles the identity's
// roles assign there.
type BuildInput struct {
	Authenticated bool
	Roles         []models.Role
	CategoryRoles map[uint][]models.CategoryRole
	Categories    []models.Category
}

// Build computes the permission document for one role set. It never fails:
// anything not granted stays at its default.
func Build(in BuildInput) *UserACL {
	doc := &UserACL{
		IsAuthenticated: in.Authenticated,
		IsAnonymous:     !in.Authenticated,
		Categories:      map[uint]CategoryACL{},
	}

	fragments := make([]models.ACLFragment, 0, len(in.Roles))
	for _, r := range in.Roles {
		fragments = append(fragments, r.Fragment())
	}
	for _, k := range globalKeys {
		v, ok := ReduceFound(fragments, k.name, k.reduce)
		if !ok {
			v = k.fallback
		}
		if !in.Authenticated && !k.anon {
			v = 0
		}
		*k.field(doc) = v
	}

	byID := make(map[uint]*models.Category, len(in.Categories))
	ordered := make([]*models.Category, 0, len(in.Categories))
	var private *models.Category
	for i := range in.Categories {
		c := &in.Categories[i]
		byID[c.ID] = c
		switch c.Special {
		case models.CategoryRoot:
		case models.CategoryPrivatePapers:
			private = c
		default:
			ordered = append(ordered, c)
		}
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	visible := map[uint]bool{}
	var visit func(c *models.Category) bool
	visit = func(c *models.Category) bool {
		if seen, ok := visible[c.ID]; ok {
			return seen
		}
		visible[c.ID] = false
		if c.ParentID != nil {
			if parent, ok := byID[*c.ParentID]; ok && parent.Special != models.CategoryRoot && !visit(parent) {
				return false
			}
		}
		frags := categoryFragments(in.CategoryRoles[c.ID])
		if Reduce(0, frags, KeyCanSee, Greater) == 0 {
			return false
		}
		visible[c.ID] = true
		return true
	}

	for _, c := range ordered {
		if !visit(c) {
			continue
		}
		doc.VisibleCategories = append(doc.VisibleCategories, c.ID)

		catACL := buildCategoryACL(c, categoryFragments(in.CategoryRoles[c.ID]), in.Authenticated)
		if catACL.CanBrowse == 0 {
			continue
		}
		doc.BrowseableCategories = append(doc.BrowseableCategories, c.ID)
		doc.Categories[c.ID] = catACL
		if catACL.CanApproveContent > 0 {
			doc.CanApproveContent = append(doc.CanApproveContent, c.ID)
		}
		if catACL.CanSeeReports > 0 {
			doc.CanSeeReports = append(doc.CanSeeReports, c.ID)
		}
	}

	if private != nil && doc.CanUsePrivatePapers > 0 {
		injectPrivatePapers(doc, private)
	} else {
		doc.CanStartPrivatePapers = 0
	}

	return doc
}

func categoryFragments(roles []models.CategoryRole) []models.ACLFragment {
	out := make([]models.ACLFragment, 0, len(roles))
	for _, r := range roles {
		out = append(out, r.Fragment())
	}
	return out
}

func buildCategoryACL(c *models.Category, fragments []models.ACLFragment, authenticated bool) CategoryACL {
	var out CategoryACL
	for _, k := range categoryKeys {
		v, _ := ReduceFound(fragments, k.name, k.reduce)
		if !authenticated && !k.anon {
			v = 0
		}
		*k.field(&out) = v
	}

	if out.CanSee == 0 {
		out.CanBrowse = 0
	}
	if c.RequirePapersApproval {
		out.RequirePapersApproval = 1
	}
	if c.RequireRepliesApproval {
		out.RequireRepliesApproval = 1
	}
	if c.RequireEditsApproval {
		out.RequireEditsApproval = 1
	}
	if out.CanApproveContent > 0 {
		out.RequirePapersApproval = 0
		out.RequireRepliesApproval = 0
		out.RequireEditsApproval = 0
	}
	return out
}

func injectPrivatePapers(doc *UserACL, category *models.Category) {
	catACL := CategoryACL{
		CanSee:           1,
		CanBrowse:        1,
		CanSeeAllPapers:  1,
		CanStartPapers:   doc.CanStartPrivatePapers,
		CanReplyPapers:   1,
		CanEditPapers:    1,
		CanEditPosts:     1,
		CanHideOwnPosts:  1,
		CanReportContent: doc.CanReportPrivatePapers,
	}

	if doc.IsPrivatePapersModerator() {
		catACL.CanEditPapers = 2
		catACL.CanEditPosts = 2
		catACL.CanHidePapers = 2
		catACL.CanHidePosts = 2
		catACL.CanProtectPosts = 1
		catACL.CanMergePosts = 1
		catACL.CanSeeReports = 1
		catACL.CanClosePapers = 1
		catACL.CanHideEvents = 2
		doc.CanSeeReports = append(doc.CanSeeReports, category.ID)
	}

	doc.Categories[category.ID] = catACL
	doc.VisibleCategories = append(doc.VisibleCategories, category.ID)
	doc.BrowseableCategories = append(doc.BrowseableCategories, category.ID)
}
