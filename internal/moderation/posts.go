package moderation

import (
	"context"
	"fmt"

	"github.com/Kyz7/limitless/internal/acl"
	"github.com/Kyz7/limitless/internal/apperr"
	"github.com/Kyz7/limitless/internal/models"
	"github.com/Kyz7/limitless/internal/permissions"
	"github.com/Kyz7/limitless/internal/synchronize"
	"gorm.io/gorm/clause"
)

type MovePostsInput struct {
	NewPaper uint   `json:"new_paper"`
	Posts    []uint `json:"posts"`
}

type SplitPostsInput struct {
	NewPaperOptions
	Posts []uint `json:"posts"`
}

type MergePostsInput struct {
	Posts []uint `json:"posts"`
}

// postAction names a bulk post operation in validation messages.
type postAction struct {
	verb  string
	min   int
	limit int
	allow func(*acl.UserACL, *models.Post) error
}

// loadPosts resolves ids to visible posts of paper, ordered by id, that
// pass the action's guard.
func (s *Service) loadPosts(ctx context.Context, user *acl.UserACL, paper *models.Paper, ids []uint, action postAction) ([]*models.Post, error) {
	ids = unique(ids)
	if len(ids) < action.min {
		if action.min == 1 {
			return nil, apperr.Invalid("posts", fmt.Sprintf("You have to specify at least one post to %s.", action.verb))
		}
		return nil, apperr.Invalid("posts", fmt.Sprintf("You have to select at least %d posts to %s.", action.min, action.verb))
	}
	if len(ids) > action.limit {
		return nil, apperr.Invalid("posts", fmt.Sprintf(
			"No more than %d posts can be %s at a single time.", action.limit, pastTense(action.verb)))
	}

	query := s.db.WithContext(ctx).Model(&models.Post{}).
		Where("posts.paper_id = ? AND posts.id IN ?", paper.ID, ids)
	query = permissions.ExcludeInvisiblePostsInCategory(user, paper.CategoryID, query)

	var rows []models.Post
	if err := query.Order("posts.id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load posts of paper %d: %w", paper.ID, err)
	}
	if len(rows) != len(ids) {
		return nil, apperr.Invalid("posts", fmt.Sprintf("One or more posts to %s could not be found.", action.verb))
	}

	posts := make([]*models.Post, len(rows))
	for i := range rows {
		post := &rows[i]
		post.Paper = paper
		post.Category = paper.Category
		if err := action.allow(user, post); err != nil {
			return nil, err
		}
		posts[i] = post
	}
	return posts, nil
}

func pastTense(verb string) string {
	switch verb {
	case "split":
		return "split"
	default:
		return verb + "d"
	}
}

// MovePosts moves posts of paper to another paper the actor can reply to,
// and returns that paper.
func (s *Service) MovePosts(ctx context.Context, actor Actor, paper *models.Paper, in MovePostsInput) (*models.Paper, error) {
	if actor.ACL.Category(paper.CategoryID).CanMovePosts == 0 {
		return nil, apperr.Denied(apperr.ReasonNoPermission, "You can't move posts in this paper.")
	}
	if in.NewPaper == 0 {
		return nil, apperr.Invalid("new_paper", "Enter link to new paper.")
	}
	if in.NewPaper == paper.ID {
		return nil, apperr.Invalid("new_paper", "Paper to move posts to is same as current one.")
	}

	target, err := s.Paper(ctx, actor.ACL, in.NewPaper)
	if apperr.IsNotFound(err) {
		return nil, apperr.Invalid("new_paper",
			"The paper you have entered link to doesn't exist or you don't have permission to see it.")
	}
	if err != nil {
		return nil, err
	}
	if !permissions.CanReplyPaper(actor.ACL, target) {
		return nil, apperr.Invalid("new_paper", "You can't move posts to papers you can't reply.")
	}

	posts, err := s.loadPosts(ctx, actor.ACL, paper, in.Posts, postAction{
		verb: "move", min: 1, limit: s.limits.PostsPerPage, allow: permissions.AllowMovePost,
	})
	if err != nil {
		return nil, err
	}

	err = s.atomic(ctx, actor.User, func(o *op) error {
		return o.movePosts(paper, target, posts)
	})
	if err != nil {
		return nil, err
	}

	permissions.AddACLToPaper(actor.ACL, target)
	return target, nil
}

// SplitPosts moves posts of paper to a new paper.
func (s *Service) SplitPosts(ctx context.Context, actor Actor, paper *models.Paper, in SplitPostsInput) (*models.Paper, error) {
	if actor.ACL.Category(paper.CategoryID).CanMovePosts == 0 {
		return nil, apperr.Denied(apperr.ReasonNoPermission, "You can't split posts from this paper.")
	}

	posts, err := s.loadPosts(ctx, actor.ACL, paper, in.Posts, postAction{
		verb: "split", min: 1, limit: s.limits.PostsPerPage, allow: permissions.AllowSplitPost,
	})
	if err != nil {
		return nil, err
	}
	category, err := s.validateNewPaper(ctx, actor.ACL, &in.NewPaperOptions)
	if err != nil {
		return nil, err
	}

	var created *models.Paper
	err = s.atomic(ctx, actor.User, func(o *op) error {
		created = &models.Paper{
			CategoryID: category.ID,
			Category:   category,
			StartedOn:  o.now,
			LastPostOn: o.now,
		}
		created.SetTitle(in.Title)
		if err := o.tx.Omit(clause.Associations).Create(created).Error; err != nil {
			return fmt.Errorf("create split paper: %w", err)
		}

		if err := o.movePosts(paper, created, posts); err != nil {
			return err
		}
		return o.applyNewPaperFlags(created, in.NewPaperOptions)
	})
	if err != nil {
		return nil, err
	}

	permissions.AddACLToPaper(actor.ACL, created)
	return created, nil
}

func (o *op) movePosts(from, to *models.Paper, posts []*models.Post) error {
	for _, post := range posts {
		if post.IsBestAnswer() {
			from.ClearBestAnswer()
		}
		if err := movePost(o.tx, post, to); err != nil {
			return err
		}
	}

	if err := synchronize.Paper(o.tx, from); err != nil {
		return err
	}
	if err := synchronize.Paper(o.tx, to); err != nil {
		return err
	}
	return o.synchronizeCategories(from.Category, to.Category)
}

// MergePosts folds posts of one author into the oldest of them and
// returns it.
func (s *Service) MergePosts(ctx context.Context, actor Actor, paper *models.Paper, in MergePostsInput) (*models.Post, error) {
	if actor.ACL.Category(paper.CategoryID).CanMergePosts == 0 {
		return nil, apperr.Denied(apperr.ReasonNoPermission, "You can't merge posts in this paper.")
	}

	posts, err := s.loadPosts(ctx, actor.ACL, paper, in.Posts, postAction{
		verb: "merge", min: 2, limit: s.limits.PostsLimit(), allow: permissions.AllowMergePost,
	})
	if err != nil {
		return nil, err
	}

	target := posts[0]
	for _, post := range posts[1:] {
		if !post.SamePoster(target) {
			return nil, apperr.Invalid("posts", "Posts created by different users can't be merged.")
		}
		if post.IsBestAnswer() && target.IsFirstPost() {
			return nil, apperr.Invalid("posts", "Post marked as best answer can't be merged with paper's first post.")
		}
		if !target.IsFirstPost() &&
			(post.IsHidden != target.IsHidden || post.IsUnapproved != target.IsUnapproved) {
			return nil, apperr.Invalid("posts", "Posts with different visibility can't be merged.")
		}
	}

	err = s.atomic(ctx, actor.User, func(o *op) error {
		for _, post := range posts[1:] {
			if post.IsBestAnswer() {
				id := target.ID
				paper.BestAnswerID = &id
			}
			post.MergeInto(target)
			if err := deletePost(o.tx, post); err != nil {
				return err
			}
		}
		if paper.BestAnswerID != nil && *paper.BestAnswerID == target.ID {
			paper.BestAnswerIsProtected = target.IsProtected
		}

		target.UpdateSearchDocument(paper.Title)
		if err := o.tx.Omit(clause.Associations).Save(target).Error; err != nil {
			return fmt.Errorf("save merged post %d: %w", target.ID, err)
		}
		if err := synchronize.Paper(o.tx, paper); err != nil {
			return err
		}
		return o.synchronizePaperCategory(paper)
	})
	if err != nil {
		return nil, err
	}

	permissions.AddACLToPost(actor.ACL, target)
	return target, nil
}
