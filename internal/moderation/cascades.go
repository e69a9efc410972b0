package moderation

import (
	"fmt"

	"github.com/Kyz7/limitless/internal/models"
	"gorm.io/gorm"
)

// Rows that follow their paper between categories.
func paperContent() []any {
	return []any{
		&models.Post{},
		&models.PostEdit{},
		&models.PostLike{},
		&models.PollVote{},
		&models.Subscription{},
		&models.Poll{},
	}
}

func moveContent(tx *gorm.DB, paper *models.Paper) error {
	for _, model := range paperContent() {
		err := tx.Model(model).
			Where("paper_id = ?", paper.ID).
			Update("category_id", paper.CategoryID).Error
		if err != nil {
			return fmt.Errorf("move content of paper %d: %w", paper.ID, err)
		}
	}
	return nil
}

// mergeContent hands the posts of other over to paper. Subscriptions move
// only for users not already subscribed to paper.
func mergeContent(tx *gorm.DB, paper, other *models.Paper) error {
	target := map[string]any{"category_id": paper.CategoryID, "paper_id": paper.ID}
	for _, model := range []any{&models.Post{}, &models.PostEdit{}, &models.PostLike{}} {
		if err := tx.Model(model).Where("paper_id = ?", other.ID).Updates(target).Error; err != nil {
			return fmt.Errorf("merge paper %d into %d: %w", other.ID, paper.ID, err)
		}
	}

	subscribed := tx.Model(&models.Subscription{}).Select("user_id").Where("paper_id = ?", paper.ID)
	err := tx.Model(&models.Subscription{}).
		Where("paper_id = ? AND user_id NOT IN (?)", other.ID, subscribed).
		Updates(target).Error
	if err != nil {
		return fmt.Errorf("merge subscriptions of paper %d: %w", other.ID, err)
	}
	return nil
}

// deleteContent removes paper and everything attached to it.
func deleteContent(tx *gorm.DB, paperID uint) error {
	rows := append(paperContent(), &models.PaperParticipant{})
	for _, model := range rows {
		if err := tx.Where("paper_id = ?", paperID).Delete(model).Error; err != nil {
			return fmt.Errorf("delete content of paper %d: %w", paperID, err)
		}
	}
	if err := tx.Delete(&models.Paper{}, paperID).Error; err != nil {
		return fmt.Errorf("delete paper %d: %w", paperID, err)
	}
	return nil
}

func movePoll(tx *gorm.DB, poll *models.Poll, paper *models.Paper) error {
	target := map[string]any{"category_id": paper.CategoryID, "paper_id": paper.ID}
	if err := tx.Model(&models.PollVote{}).Where("poll_id = ?", poll.ID).Updates(target).Error; err != nil {
		return fmt.Errorf("move votes of poll %d: %w", poll.ID, err)
	}
	if err := tx.Model(&models.Poll{}).Where("id = ?", poll.ID).Updates(target).Error; err != nil {
		return fmt.Errorf("move poll %d: %w", poll.ID, err)
	}
	poll.CategoryID = paper.CategoryID
	poll.PaperID = paper.ID
	paper.HasPoll = true
	paper.Poll = poll
	return nil
}

func deletePoll(tx *gorm.DB, poll *models.Poll) error {
	if err := tx.Where("poll_id = ?", poll.ID).Delete(&models.PollVote{}).Error; err != nil {
		return fmt.Errorf("delete votes of poll %d: %w", poll.ID, err)
	}
	if err := tx.Delete(&models.Poll{}, poll.ID).Error; err != nil {
		return fmt.Errorf("delete poll %d: %w", poll.ID, err)
	}
	return nil
}

func movePost(tx *gorm.DB, post *models.Post, paper *models.Paper) error {
	target := map[string]any{"category_id": paper.CategoryID, "paper_id": paper.ID}
	for _, model := range []any{&models.PostEdit{}, &models.PostLike{}} {
		if err := tx.Model(model).Where("post_id = ?", post.ID).Updates(target).Error; err != nil {
			return fmt.Errorf("move post %d: %w", post.ID, err)
		}
	}
	if err := tx.Model(&models.Post{}).Where("id = ?", post.ID).Updates(target).Error; err != nil {
		return fmt.Errorf("move post %d: %w", post.ID, err)
	}
	post.CategoryID = paper.CategoryID
	post.PaperID = paper.ID
	post.Paper = paper
	return nil
}

func deletePost(tx *gorm.DB, post *models.Post) error {
	for _, model := range []any{&models.PostEdit{}, &models.PostLike{}} {
		if err := tx.Where("post_id = ?", post.ID).Delete(model).Error; err != nil {
			return fmt.Errorf("delete post %d: %w", post.ID, err)
		}
	}
	if err := tx.Delete(&models.Post{}, post.ID).Error; err != nil {
		return fmt.Errorf("delete post %d: %w", post.ID, err)
	}
	return nil
}
