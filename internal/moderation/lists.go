package moderation

import (
	"context"
	"fmt"

	"github.com/Kyz7/limitless/internal/acl"
	"github.com/Kyz7/limitless/internal/models"
	"github.com/Kyz7/limitless/internal/permissions"
)

// PapersPage lists the visible papers of a category, pinned papers first
// and then by latest activity.
func (s *Service) PapersPage(ctx context.Context, user *acl.UserACL, category *models.Category, page int) ([]models.Paper, int64, error) {
	if page < 1 {
		page = 1
	}
	limit := s.limits.PapersPerPage

	query := s.db.WithContext(ctx).Model(&models.Paper{}).Where("papers.category_id = ?", category.ID)
	query = permissions.ExcludeInvisiblePapers(user, []uint{category.ID}, query)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count papers of category %d: %w", category.ID, err)
	}

	var papers []models.Paper
	err := query.Order("papers.weight DESC, papers.last_post_on DESC, papers.id DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&papers).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list papers of category %d: %w", category.ID, err)
	}
	for i := range papers {
		papers[i].Category = category
	}
	permissions.AddACLToPapers(user, papers)
	return papers, total, nil
}

// PostsPage lists the visible posts of a paper in posting order.
func (s *Service) PostsPage(ctx context.Context, user *acl.UserACL, paper *models.Paper, page int) ([]models.Post, int64, error) {
	if page < 1 {
		page = 1
	}
	limit := s.limits.PostsPerPage

	query := s.db.WithContext(ctx).Model(&models.Post{}).Where("posts.paper_id = ?", paper.ID)
	query = permissions.ExcludeInvisiblePostsInCategory(user, paper.CategoryID, query)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count posts of paper %d: %w", paper.ID, err)
	}

	var posts []models.Post
	err := query.Order("posts.id").Offset((page - 1) * limit).Limit(limit).Find(&posts).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list posts of paper %d: %w", paper.ID, err)
	}
	for i := range posts {
		posts[i].Paper = paper
		posts[i].Category = paper.Category
	}
	permissions.AddACLToPosts(user, posts)
	return posts, total, nil
}
