// Package synchronize recomputes derived paper and category fields from
// stored rows and persists them. Callers run it inside their transaction
// after any change that could affect the counters.
package synchronize

import (
	"fmt"
	"slices"

	"github.com/Kyz7/limitless/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Paper reloads the paper's posts and poll state, synchronizes paper in
// place and saves it.
func Paper(tx *gorm.DB, paper *models.Paper) error {
	var posts []models.Post
	if err := tx.Where("paper_id = ?", paper.ID).Order("id").Find(&posts).Error; err != nil {
		return fmt.Errorf("load posts of paper %d: %w", paper.ID, err)
	}

	var polls int64
	if err := tx.Model(&models.Poll{}).Where("paper_id = ?", paper.ID).Count(&polls).Error; err != nil {
		return fmt.Errorf("count polls of paper %d: %w", paper.ID, err)
	}

	paper.Synchronize(posts, polls > 0)
	if err := tx.Omit(clause.Associations).Save(paper).Error; err != nil {
		return fmt.Errorf("save paper %d: %w", paper.ID, err)
	}
	return nil
}

// Category recomputes counters and the last paper snapshot of category
// and saves it.
func Category(tx *gorm.DB, category *models.Category) error {
	var papers []models.Paper
	if err := tx.Where("category_id = ?", category.ID).Find(&papers).Error; err != nil {
		return fmt.Errorf("load papers of category %d: %w", category.ID, err)
	}

	category.Synchronize(papers)
	if err := tx.Save(category).Error; err != nil {
		return fmt.Errorf("save category %d: %w", category.ID, err)
	}
	return nil
}

// Categories synchronizes every distinct category in ids.
func Categories(tx *gorm.DB, ids ...uint) error {
	unique := slices.Compact(slices.Sorted(slices.Values(ids)))
	if len(unique) == 0 {
		return nil
	}

	var categories []models.Category
	if err := tx.Where("id IN ?", unique).Find(&categories).Error; err != nil {
		return fmt.Errorf("load categories: %w", err)
	}
	for i := range categories {
		if err := Category(tx, &categories[i]); err != nil {
			return err
		}
	}
	return nil
}
