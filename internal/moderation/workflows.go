package moderation

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Kyz7/limitless/internal/acl"
	"github.com/Kyz7/limitless/internal/apperr"
	"github.com/Kyz7/limitless/internal/mergeconflict"
	"github.com/Kyz7/limitless/internal/models"
	"github.com/Kyz7/limitless/internal/permissions"
	"github.com/Kyz7/limitless/internal/synchronize"
	"github.com/Kyz7/limitless/internal/utils"
	"gorm.io/gorm/clause"
)

// Resolutions carries the client's picks for merge conflicts.
type Resolutions struct {
	BestAnswer any `json:"best_answer,omitempty"`
	Poll       any `json:"poll,omitempty"`
}

func (r Resolutions) submission() map[string]any {
	out := map[string]any{}
	if r.BestAnswer != nil {
		out["best_answer"] = r.BestAnswer
	}
	if r.Poll != nil {
		out["poll"] = r.Poll
	}
	return out
}

// NewPaperOptions are the moderation flags a paper created by a workflow
// starts with.
type NewPaperOptions struct {
	Title      string `json:"title"`
	CategoryID uint   `json:"category"`
	Weight     int    `json:"weight"`
	IsHidden   bool   `json:"is_hidden"`
	IsClosed   bool   `json:"is_closed"`
}

type MergePapersInput struct {
	NewPaperOptions
	Resolutions
	Papers []uint `json:"papers"`
}

type MergePaperInput struct {
	Resolutions
	OtherPaper uint `json:"other_paper"`
}

// ValidateTitle returns the trimmed title or a validation error.
func (s *Service) ValidateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	length := utf8.RuneCountInString(title)

	if length < s.limits.TitleMinLength {
		return "", apperr.Invalid("title", fmt.Sprintf(
			"Paper title should be at least %d characters long (it has %d).", s.limits.TitleMinLength, length))
	}
	if length > s.limits.TitleMaxLength {
		return "", apperr.Invalid("title", fmt.Sprintf(
			"Paper title can't be more than %d characters long (it has %d).", s.limits.TitleMaxLength, length))
	}
	if utils.Slugify(title) == "" {
		return "", apperr.Invalid("title", "Paper title should contain alpha-numeric characters.")
	}
	return title, nil
}

// validateNewPaper checks the target category and flags of a paper about
// to be created by a workflow, and returns the category.
func (s *Service) validateNewPaper(ctx context.Context, user *acl.UserACL, opts *NewPaperOptions) (*models.Category, error) {
	title, err := s.ValidateTitle(opts.Title)
	if err != nil {
		return nil, err
	}
	opts.Title = title

	if opts.CategoryID == 0 {
		return nil, apperr.Invalid("category", "Category is required.")
	}
	category, err := s.Category(ctx, user, opts.CategoryID)
	if err != nil {
		return nil, apperr.Invalid("category", "Requested category could not be found.")
	}
	if err := permissions.AllowStartPaper(user, category); err != nil {
		return nil, apperr.Invalid("category", err.Error())
	}

	levels := user.Category(category.ID)
	if opts.Weight < models.WeightDefault || opts.Weight > models.WeightGlobal {
		return nil, apperr.Invalid("weight", "Ensure this value is between 0 and 2.")
	}
	if opts.Weight > levels.CanPinPapers {
		if opts.Weight == models.WeightGlobal {
			return nil, apperr.Invalid("weight", "You don't have permission to pin papers globally in this category.")
		}
		return nil, apperr.Invalid("weight", "You don't have permission to pin papers in this category.")
	}
	if opts.IsHidden && levels.CanHidePapers == 0 {
		return nil, apperr.Invalid("is_hidden", "You don't have permission to hide papers in this category.")
	}
	if opts.IsClosed && levels.CanClosePapers == 0 {
		return nil, apperr.Invalid("is_closed", "You don't have permission to close papers in this category.")
	}
	return category, nil
}

// MergePapers folds the given papers into a new one.
func (s *Service) MergePapers(ctx context.Context, actor Actor, in MergePapersInput) (*models.Paper, error) {
	ids := unique(in.Papers)
	if len(ids) < 2 {
		return nil, apperr.Invalid("papers", "You have to select at least two papers to merge.")
	}
	if len(ids) > s.limits.PapersPerPage {
		return nil, apperr.Invalid("papers", fmt.Sprintf(
			"No more than %d papers can be merged at a single time.", s.limits.PapersPerPage))
	}

	papers := make([]*models.Paper, 0, len(ids))
	for _, id := range slices.Backward(ids) {
		paper, err := s.Paper(ctx, actor.ACL, id)
		if apperr.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if err := permissions.AllowMergePaper(actor.ACL, paper, false); err != nil {
			return nil, err
		}
		papers = append(papers, paper)
	}
	if len(papers) != len(ids) {
		return nil, apperr.Invalid("papers", "One or more papers to merge could not be found.")
	}

	category, err := s.validateNewPaper(ctx, actor.ACL, &in.NewPaperOptions)
	if err != nil {
		return nil, err
	}

	conflict := mergeconflict.New(papers, in.submission())
	if err := conflict.Validate(); err != nil {
		return nil, err
	}

	var merged *models.Paper
	err = s.atomic(ctx, actor.User, func(o *op) error {
		merged = &models.Paper{
			CategoryID: category.ID,
			Category:   category,
			StartedOn:  o.now,
			LastPostOn: o.now,
		}
		merged.SetTitle(in.Title)
		if err := o.tx.Omit(clause.Associations).Create(merged).Error; err != nil {
			return fmt.Errorf("create merged paper: %w", err)
		}

		if err := o.applyResolution(merged, papers, conflict); err != nil {
			return err
		}

		touched := []*models.Category{category}
		for _, paper := range papers {
			if _, err := o.merge(merged, paper); err != nil {
				return err
			}
			touched = append(touched, paper.Category)
		}
		if err := synchronize.Paper(o.tx, merged); err != nil {
			return err
		}

		if err := o.applyNewPaperFlags(merged, in.NewPaperOptions); err != nil {
			return err
		}
		return o.synchronizeCategories(touched...)
	})
	if err != nil {
		return nil, err
	}

	permissions.AddACLToPaper(actor.ACL, merged)
	return merged, nil
}

// MergePaper moves the content of paper into another paper the actor can
// reply to. The other paper survives and is returned.
func (s *Service) MergePaper(ctx context.Context, actor Actor, paper *models.Paper, in MergePaperInput) (*models.Paper, error) {
	if err := permissions.AllowMergePaper(actor.ACL, paper, false); err != nil {
		return nil, err
	}
	if in.OtherPaper == 0 {
		return nil, apperr.Invalid("other_paper", "Enter link to new paper.")
	}
	if in.OtherPaper == paper.ID {
		return nil, apperr.Invalid("other_paper", "You can't merge paper with itself.")
	}

	other, err := s.Paper(ctx, actor.ACL, in.OtherPaper)
	if apperr.IsNotFound(err) {
		return nil, apperr.Invalid("other_paper",
			"The paper you have entered link to doesn't exist or you don't have permission to see it.")
	}
	if err != nil {
		return nil, err
	}
	if err := permissions.AllowMergePaper(actor.ACL, other, true); err != nil {
		return nil, err
	}
	if err := permissions.AllowReplyPaper(actor.ACL, other); err != nil {
		return nil, err
	}

	papers := []*models.Paper{paper, other}
	conflict := mergeconflict.New(papers, in.submission())
	if err := conflict.Validate(); err != nil {
		return nil, err
	}

	err = s.atomic(ctx, actor.User, func(o *op) error {
		if err := o.applyResolution(other, papers, conflict); err != nil {
			return err
		}
		if _, err := o.merge(other, paper); err != nil {
			return err
		}
		if err := synchronize.Paper(o.tx, other); err != nil {
			return err
		}
		return o.synchronizeCategories(paper.Category, other.Category)
	})
	if err != nil {
		return nil, err
	}

	permissions.AddACLToPaper(actor.ACL, other)
	return other, nil
}

// applyResolution gives target the surviving best answer and poll. Polls
// that lose are deleted before their papers are merged away.
func (o *op) applyResolution(target *models.Paper, papers []*models.Paper, conflict *mergeconflict.MergeConflict) error {
	if source := conflict.BestAnswerSource(); source != nil {
		target.CopyBestAnswer(source)
	} else {
		target.ClearBestAnswer()
	}

	chosen := conflict.Poll()
	for _, paper := range papers {
		if paper.Poll == nil || (chosen != nil && paper.Poll.ID == chosen.ID) {
			continue
		}
		if err := deletePoll(o.tx, paper.Poll); err != nil {
			return err
		}
		paper.Poll = nil
		paper.HasPoll = false
	}
	if chosen != nil && chosen.PaperID != target.ID {
		if err := movePoll(o.tx, chosen, target); err != nil {
			return err
		}
	}
	target.HasPoll = chosen != nil

	if err := o.tx.Omit(clause.Associations).Save(target).Error; err != nil {
		return fmt.Errorf("save paper %d: %w", target.ID, err)
	}
	return nil
}

// applyNewPaperFlags runs the moderation actions requested for a paper
// created by a workflow.
func (o *op) applyNewPaperFlags(paper *models.Paper, opts NewPaperOptions) error {
	switch opts.Weight {
	case models.WeightGlobal:
		if _, err := o.setWeight(paper, models.WeightGlobal, EventPinnedGlobally); err != nil {
			return err
		}
	case models.WeightPinned:
		if _, err := o.setWeight(paper, models.WeightPinned, EventPinnedLocally); err != nil {
			return err
		}
	}
	if opts.IsHidden {
		if _, err := o.hide(paper); err != nil {
			return err
		}
	}
	if opts.IsClosed {
		if _, err := o.setClosed(paper, true); err != nil {
			return err
		}
	}
	return nil
}

// DeletePapers deletes every paper in ids or none of them. Papers the
// actor can't see or delete are reported per id.
func (s *Service) DeletePapers(ctx context.Context, actor Actor, ids []uint) error {
	ids = unique(ids)
	if len(ids) == 0 {
		return apperr.Invalid("papers", "You have to specify at least one paper to delete.")
	}
	if len(ids) > s.limits.PapersPerPage {
		return apperr.Invalid("papers", fmt.Sprintf(
			"No more than %d papers can be deleted at a single time.", s.limits.PapersPerPage))
	}

	papers := make([]*models.Paper, 0, len(ids))
	rejected := map[string][]string{}
	for _, id := range ids {
		key := strconv.FormatUint(uint64(id), 10)
		paper, err := s.Paper(ctx, actor.ACL, id)
		if apperr.IsNotFound(err) {
			rejected[key] = []string{"Paper not found."}
			continue
		}
		if err != nil {
			return err
		}
		if err := permissions.AllowDeletePaper(actor.ACL, paper); err != nil {
			rejected[key] = []string{err.Error()}
			continue
		}
		papers = append(papers, paper)
	}
	if len(rejected) > 0 {
		return &apperr.ValidationError{Fields: rejected}
	}

	return s.atomic(ctx, actor.User, func(o *op) error {
		for _, paper := range papers {
			if _, err := o.delete(paper); err != nil {
				return err
			}
		}
		return nil
	})
}

func unique(ids []uint) []uint {
	out := slices.Clone(ids)
	slices.Sort(out)
	out = slices.Compact(out)
	if len(out) > 0 && out[0] == 0 {
		out = out[1:]
	}
	return out
}
