package moderation

import (
	"context"
	"fmt"

	"github.com/Kyz7/limitless/internal/models"
	"github.com/Kyz7/limitless/internal/synchronize"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// The actions below report false without touching storage when the paper
// is already in the requested state. Otherwise they apply the change,
// record an event and report true.

func (s *Service) ChangeTitle(ctx context.Context, actor *models.User, paper *models.Paper, title string) (bool, error) {
	return s.run(ctx, actor, func(o *op) (bool, error) { return o.changeTitle(paper, title) })
}

func (s *Service) PinGlobally(ctx context.Context, actor *models.User, paper *models.Paper) (bool, error) {
	return s.run(ctx, actor, func(o *op) (bool, error) {
		return o.setWeight(paper, models.WeightGlobal, EventPinnedGlobally)
	})
}

func (s *Service) PinLocally(ctx context.Context, actor *models.User, paper *models.Paper) (bool, error) {
	return s.run(ctx, actor, func(o *op) (bool, error) {
		return o.setWeight(paper, models.WeightPinned, EventPinnedLocally)
	})
}

func (s *Service) Unpin(ctx context.Context, actor *models.User, paper *models.Paper) (bool, error) {
	return s.run(ctx, actor, func(o *op) (bool, error) {
		return o.setWeight(paper, models.WeightDefault, EventUnpinned)
	})
}

func (s *Service) Move(ctx context.Context, actor *models.User, paper *models.Paper, category *models.Category) (bool, error) {
	return s.run(ctx, actor, func(o *op) (bool, error) { return o.move(paper, category) })
}

// Merge moves the content of other into paper, deletes other and recounts
// paper and both categories.
func (s *Service) Merge(ctx context.Context, actor *models.User, paper, other *models.Paper) (bool, error) {
	return s.run(ctx, actor, func(o *op) (bool, error) {
		if err := ensureCategory(o.tx, paper); err != nil {
			return false, err
		}
		if err := ensureCategory(o.tx, other); err != nil {
			return false, err
		}
		if _, err := o.merge(paper, other); err != nil {
			return false, err
		}
		if err := synchronize.Paper(o.tx, paper); err != nil {
			return false, err
		}
		return true, o.synchronizeCategories(paper.Category, other.Category)
	})
}

func (s *Service) Approve(ctx context.Context, actor *models.User, paper *models.Paper) (bool, error) {
	return s.run(ctx, actor, func(o *op) (bool, error) { return o.approve(paper) })
}

func (s *Service) Open(ctx context.Context, actor *models.User, paper *models.Paper) (bool, error) {
	return s.run(ctx, actor, func(o *op) (bool, error) { return o.setClosed(paper, false) })
}

func (s *Service) Close(ctx context.Context, actor *models.User, paper *models.Paper) (bool, error) {
	return s.run(ctx, actor, func(o *op) (bool, error) { return o.setClosed(paper, true) })
}

func (s *Service) Hide(ctx context.Context, actor *models.User, paper *models.Paper) (bool, error) {
	return s.run(ctx, actor, func(o *op) (bool, error) { return o.hide(paper) })
}

func (s *Service) Unhide(ctx context.Context, actor *models.User, paper *models.Paper) (bool, error) {
	return s.run(ctx, actor, func(o *op) (bool, error) { return o.unhide(paper) })
}

func (s *Service) Delete(ctx context.Context, actor *models.User, paper *models.Paper) (bool, error) {
	return s.run(ctx, actor, func(o *op) (bool, error) { return o.delete(paper) })
}

func (o *op) changeTitle(paper *models.Paper, title string) (bool, error) {
	if paper.Title == title {
		return false, nil
	}

	oldTitle := paper.Title
	paper.SetTitle(title)

	first, err := loadFirstPost(o.tx, paper)
	if err != nil {
		return false, err
	}
	if first != nil {
		first.UpdateSearchDocument(paper.Title)
		err := o.tx.Model(&models.Post{}).
			Where("id = ?", first.ID).
			Update("search_document", first.SearchDocument).Error
		if err != nil {
			return false, fmt.Errorf("update search document of post %d: %w", first.ID, err)
		}
	}

	if err := o.recordEvent(paper, EventChangedTitle, map[string]any{"old_title": oldTitle}); err != nil {
		return false, err
	}
	return true, nil
}

func (o *op) setWeight(paper *models.Paper, weight int, eventType string) (bool, error) {
	if paper.Weight == weight {
		return false, nil
	}
	paper.Weight = weight
	if err := o.recordEvent(paper, eventType, nil); err != nil {
		return false, err
	}
	return true, nil
}

func (o *op) move(paper *models.Paper, category *models.Category) (bool, error) {
	if paper.CategoryID == category.ID {
		return false, nil
	}
	if err := ensureCategory(o.tx, paper); err != nil {
		return false, err
	}

	from := paper.Category
	paper.CategoryID = category.ID
	paper.Category = category
	if err := o.tx.Omit(clause.Associations).Save(paper).Error; err != nil {
		return false, fmt.Errorf("save paper %d: %w", paper.ID, err)
	}
	if err := moveContent(o.tx, paper); err != nil {
		return false, err
	}

	err := o.recordEvent(paper, EventMoved, map[string]any{
		"from_category": map[string]any{"id": from.ID, "name": from.Name, "slug": from.Slug},
	})
	if err != nil {
		return false, err
	}
	if err := o.synchronizeCategories(from, category); err != nil {
		return false, err
	}
	return true, nil
}

// merge panics when asked to merge a paper with itself.
func (o *op) merge(paper, other *models.Paper) (bool, error) {
	if paper.ID == other.ID {
		panic("paper can't be merged with itself")
	}

	if err := mergeContent(o.tx, paper, other); err != nil {
		return false, err
	}
	if err := deleteContent(o.tx, other.ID); err != nil {
		return false, err
	}
	if err := o.recordEvent(paper, EventMerged, map[string]any{"merged_paper": other.Title}); err != nil {
		return false, err
	}
	return true, nil
}

func (o *op) approve(paper *models.Paper) (bool, error) {
	if !paper.IsUnapproved {
		return false, nil
	}

	if paper.FirstPostID != nil {
		err := o.tx.Model(&models.Post{}).
			Where("id = ?", *paper.FirstPostID).
			Update("is_unapproved", false).Error
		if err != nil {
			return false, fmt.Errorf("approve first post of paper %d: %w", paper.ID, err)
		}
	}

	var unapproved int64
	err := o.tx.Model(&models.Post{}).
		Where("paper_id = ? AND is_unapproved = ?", paper.ID, true).
		Count(&unapproved).Error
	if err != nil {
		return false, fmt.Errorf("count unapproved posts of paper %d: %w", paper.ID, err)
	}

	paper.IsUnapproved = false
	paper.HasUnapprovedPosts = unapproved > 0
	if err := o.recordEvent(paper, EventApproved, nil); err != nil {
		return false, err
	}
	if err := o.synchronizePaperCategory(paper); err != nil {
		return false, err
	}
	return true, nil
}

func (o *op) setClosed(paper *models.Paper, closed bool) (bool, error) {
	if paper.IsClosed == closed {
		return false, nil
	}
	paper.IsClosed = closed

	eventType := EventOpened
	if closed {
		eventType = EventClosed
	}
	if err := o.recordEvent(paper, eventType, nil); err != nil {
		return false, err
	}
	return true, nil
}

func (o *op) hide(paper *models.Paper) (bool, error) {
	if paper.IsHidden {
		return false, nil
	}

	first, err := loadFirstPost(o.tx, paper)
	if err != nil {
		return false, err
	}
	if first != nil {
		first.SetHiddenBy(o.actor, o.now)
		if err := saveHidden(o.tx, first); err != nil {
			return false, err
		}
	}

	paper.IsHidden = true
	if err := o.recordEvent(paper, EventHid, nil); err != nil {
		return false, err
	}
	if err := o.synchronizePaperCategory(paper); err != nil {
		return false, err
	}
	return true, nil
}

func (o *op) unhide(paper *models.Paper) (bool, error) {
	if !paper.IsHidden {
		return false, nil
	}

	first, err := loadFirstPost(o.tx, paper)
	if err != nil {
		return false, err
	}
	if first != nil {
		first.ClearHidden()
		if err := saveHidden(o.tx, first); err != nil {
			return false, err
		}
	}

	paper.IsHidden = false
	if err := o.recordEvent(paper, EventUnhid, nil); err != nil {
		return false, err
	}
	if err := o.synchronizePaperCategory(paper); err != nil {
		return false, err
	}
	return true, nil
}

func (o *op) delete(paper *models.Paper) (bool, error) {
	if err := deleteContent(o.tx, paper.ID); err != nil {
		return false, err
	}
	if err := o.synchronizePaperCategory(paper); err != nil {
		return false, err
	}
	o.log.Debug().Uint("paper_id", paper.ID).Uint("actor_id", o.actor.ID).Msg("paper deleted")
	return true, nil
}

func saveHidden(tx *gorm.DB, post *models.Post) error {
	err := tx.Model(post).
		Select("is_hidden", "hidden_on", "hidden_by_id", "hidden_by_name", "hidden_by_slug").
		Updates(post).Error
	if err != nil {
		return fmt.Errorf("save hidden state of post %d: %w", post.ID, err)
	}
	return nil
}

func (o *op) synchronizePaperCategory(paper *models.Paper) error {
	if err := ensureCategory(o.tx, paper); err != nil {
		return err
	}
	return o.synchronizeCategories(paper.Category)
}

// synchronizeCategories recounts categories and refreshes the given
// instances from storage. Nil entries are skipped.
func (o *op) synchronizeCategories(categories ...*models.Category) error {
	ids := make([]uint, 0, len(categories))
	for _, c := range categories {
		if c != nil {
			ids = append(ids, c.ID)
		}
	}
	if err := synchronize.Categories(o.tx, ids...); err != nil {
		return err
	}
	for _, c := range categories {
		if c == nil {
			continue
		}
		if err := o.tx.First(c, c.ID).Error; err != nil {
			return fmt.Errorf("reload category %d: %w", c.ID, err)
		}
	}
	return nil
}
