package moderation

import (
	"context"
	"testing"

	"github.com/Kyz7/limitless/internal/acl"
	"github.com/Kyz7/limitless/internal/apperr"
	"github.com/Kyz7/limitless/internal/models"
	"github.com/Kyz7/limitless/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMovePosts(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - moves replies to another paper", func(t *testing.T) {
		f := newFixture(t)
		paper := f.paper(t, f.general, f.moderator, "Source paper", 0)
		reply := f.reply(t, paper, f.moderator, 5)
		paper = f.load(t, paper.ID)
		target := f.paper(t, f.other, f.moderator, "Target paper", 0)

		moved, err := f.service.MovePosts(ctx, f.actor, paper, MovePostsInput{NewPaper: target.ID, Posts: []uint{reply.ID}})
		require.NoError(t, err)
		assert.Equal(t, target.ID, moved.ID)

		stored := testutils.ReloadPost(t, f.db, reply.ID)
		assert.Equal(t, target.ID, stored.PaperID)
		assert.Equal(t, f.other.ID, stored.CategoryID)

		assert.Equal(t, 0, testutils.ReloadPaper(t, f.db, paper.ID).Replies)
		assert.Equal(t, 1, testutils.ReloadPaper(t, f.db, target.ID).Replies)
		assert.Equal(t, 2, f.category(t, f.other.ID).Posts)
	})

	t.Run("Success - moving the best answer clears it", func(t *testing.T) {
		f := newFixture(t)
		paper := f.paper(t, f.general, f.moderator, "Source paper", 0)
		reply := f.reply(t, paper, f.moderator, 5)
		f.markBestAnswer(t, paper, reply)
		paper = f.load(t, paper.ID)
		target := f.paper(t, f.general, f.moderator, "Target paper", 0)

		_, err := f.service.MovePosts(ctx, f.actor, paper, MovePostsInput{NewPaper: target.ID, Posts: []uint{reply.ID}})
		require.NoError(t, err)
		assert.Nil(t, testutils.ReloadPaper(t, f.db, paper.ID).BestAnswerID)
	})

	t.Run("Error - first post can't move", func(t *testing.T) {
		f := newFixture(t)
		paper := f.paper(t, f.general, f.moderator, "Source paper", 1)
		target := f.paper(t, f.general, f.moderator, "Target paper", 0)

		_, err := f.service.MovePosts(ctx, f.actor, paper, MovePostsInput{NewPaper: target.ID, Posts: []uint{*paper.FirstPostID}})
		assert.True(t, apperr.HasReason(err, apperr.ReasonFirstPost), "got %v", err)
	})

	t.Run("Error - target is the same paper", func(t *testing.T) {
		f := newFixture(t)
		paper := f.paper(t, f.general, f.moderator, "Source paper", 1)

		_, err := f.service.MovePosts(ctx, f.actor, paper, MovePostsInput{NewPaper: paper.ID, Posts: []uint{*paper.FirstPostID}})
		validation, ok := apperr.AsValidation(err)
		require.True(t, ok)
		assert.Contains(t, validation.Fields, "new_paper")
	})

	t.Run("Error - posts from another paper are not found", func(t *testing.T) {
		f := newFixture(t)
		paper := f.paper(t, f.general, f.moderator, "Source paper", 0)
		target := f.paper(t, f.general, f.moderator, "Target paper", 1)
		foreign := f.posts(t, target.ID)[1]

		_, err := f.service.MovePosts(ctx, f.actor, paper, MovePostsInput{NewPaper: target.ID, Posts: []uint{foreign.ID}})
		validation, ok := apperr.AsValidation(err)
		require.True(t, ok)
		assert.Contains(t, validation.Fields["posts"][0], "could not be found")
	})

	t.Run("Error - moving requires the category permission", func(t *testing.T) {
		f := newFixture(t)
		paper := f.paper(t, f.general, f.moderator, "Source paper", 1)
		target := f.paper(t, f.general, f.moderator, "Target paper", 0)

		levels := moderatorLevels()
		levels.CanMovePosts = 0
		actor := f.actor
		actor.ACL = f.actor.ACL.ForIdentity(f.moderator.ID, true)
		actor.ACL.Categories = map[uint]acl.CategoryACL{f.general.ID: levels}

		_, err := f.service.MovePosts(ctx, actor, paper, MovePostsInput{NewPaper: target.ID, Posts: []uint{1}})
		assert.True(t, apperr.HasReason(err, apperr.ReasonNoPermission), "got %v", err)
	})
}

func TestSplitPosts(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - replies start a new paper", func(t *testing.T) {
		f := newFixture(t)
		paper := f.paper(t, f.general, f.moderator, "Source paper", 0)
		first := f.reply(t, paper, f.moderator, 5)
		second := f.reply(t, paper, f.moderator, 6)
		paper = f.load(t, paper.ID)

		created, err := f.service.SplitPosts(ctx, f.actor, paper, SplitPostsInput{
			NewPaperOptions: NewPaperOptions{Title: "Split off paper", CategoryID: f.other.ID, IsHidden: true},
			Posts:           []uint{second.ID, first.ID},
		})
		require.NoError(t, err)

		stored := testutils.ReloadPaper(t, f.db, created.ID)
		assert.Equal(t, "Split off paper", stored.Title)
		assert.Equal(t, f.other.ID, stored.CategoryID)
		assert.Equal(t, first.ID, *stored.FirstPostID)
		assert.Equal(t, 1, stored.Replies)
		assert.True(t, stored.IsHidden)
		assert.True(t, testutils.ReloadPost(t, f.db, first.ID).IsHidden)

		assert.Equal(t, 0, testutils.ReloadPaper(t, f.db, paper.ID).Replies)
		assert.Equal(t, 0, f.category(t, f.other.ID).Papers)
	})

	t.Run("Error - invalid title", func(t *testing.T) {
		f := newFixture(t)
		paper := f.paper(t, f.general, f.moderator, "Source paper", 1)
		reply := f.posts(t, paper.ID)[1]

		_, err := f.service.SplitPosts(ctx, f.actor, paper, SplitPostsInput{
			NewPaperOptions: NewPaperOptions{Title: "No", CategoryID: f.general.ID},
			Posts:           []uint{reply.ID},
		})
		validation, ok := apperr.AsValidation(err)
		require.True(t, ok)
		assert.Contains(t, validation.Fields, "title")
		assert.Equal(t, paper.ID, testutils.ReloadPost(t, f.db, reply.ID).PaperID)
	})

	t.Run("Error - pinning globally needs the level", func(t *testing.T) {
		f := newFixture(t)
		paper := f.paper(t, f.general, f.moderator, "Source paper", 1)
		reply := f.posts(t, paper.ID)[1]

		levels := moderatorLevels()
		levels.CanPinPapers = 1
		actor := f.actor
		actor.ACL = f.actor.ACL.ForIdentity(f.moderator.ID, true)
		actor.ACL.Categories = map[uint]acl.CategoryACL{f.general.ID: levels}

		_, err := f.service.SplitPosts(ctx, actor, paper, SplitPostsInput{
			NewPaperOptions: NewPaperOptions{Title: "Split off paper", CategoryID: f.general.ID, Weight: models.WeightGlobal},
			Posts:           []uint{reply.ID},
		})
		validation, ok := apperr.AsValidation(err)
		require.True(t, ok)
		assert.Contains(t, validation.Fields["weight"][0], "globally")
	})
}

func TestMergePosts(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - folds posts into the oldest", func(t *testing.T) {
		f := newFixture(t)
		author := testutils.CreateUser(t, f.db, "author")
		paper := f.paper(t, f.general, f.moderator, "Source paper", 0)
		first := f.reply(t, paper, author, 5)
		second := f.reply(t, paper, author, 6)
		require.NoError(t, f.db.Model(&models.Post{}).Where("id = ?", second.ID).Update("is_protected", true).Error)
		paper = f.load(t, paper.ID)

		merged, err := f.service.MergePosts(ctx, f.actor, paper, MergePostsInput{Posts: []uint{second.ID, first.ID}})
		require.NoError(t, err)
		assert.Equal(t, first.ID, merged.ID)

		stored := testutils.ReloadPost(t, f.db, first.ID)
		assert.Equal(t, "<p>Lorem ipsum</p>\n<p>Lorem ipsum</p>", stored.ParsedText)
		assert.True(t, stored.IsProtected)
		assert.False(t, f.exists(t, &models.Post{}, second.ID))
		assert.Equal(t, 1, testutils.ReloadPaper(t, f.db, paper.ID).Replies)
	})

	t.Run("Success - best answer follows the merged post", func(t *testing.T) {
		f := newFixture(t)
		author := testutils.CreateUser(t, f.db, "author")
		paper := f.paper(t, f.general, f.moderator, "Source paper", 0)
		first := f.reply(t, paper, author, 5)
		second := f.reply(t, paper, author, 6)
		f.markBestAnswer(t, paper, second)
		paper = f.load(t, paper.ID)

		_, err := f.service.MergePosts(ctx, f.actor, paper, MergePostsInput{Posts: []uint{first.ID, second.ID}})
		require.NoError(t, err)

		stored := testutils.ReloadPaper(t, f.db, paper.ID)
		require.NotNil(t, stored.BestAnswerID)
		assert.Equal(t, first.ID, *stored.BestAnswerID)
	})

	t.Run("Error - different posters", func(t *testing.T) {
		f := newFixture(t)
		author := testutils.CreateUser(t, f.db, "author")
		paper := f.paper(t, f.general, f.moderator, "Source paper", 0)
		first := f.reply(t, paper, author, 5)
		second := f.reply(t, paper, f.moderator, 6)
		paper = f.load(t, paper.ID)

		_, err := f.service.MergePosts(ctx, f.actor, paper, MergePostsInput{Posts: []uint{first.ID, second.ID}})
		validation, ok := apperr.AsValidation(err)
		require.True(t, ok)
		assert.Contains(t, validation.Fields["posts"][0], "different users")
	})

	t.Run("Error - best answer can't join the first post", func(t *testing.T) {
		f := newFixture(t)
		paper := f.paper(t, f.general, f.moderator, "Source paper", 0)
		reply := f.reply(t, paper, f.moderator, 5)
		f.markBestAnswer(t, paper, reply)
		paper = f.load(t, paper.ID)

		_, err := f.service.MergePosts(ctx, f.actor, paper, MergePostsInput{Posts: []uint{*paper.FirstPostID, reply.ID}})
		validation, ok := apperr.AsValidation(err)
		require.True(t, ok)
		assert.Contains(t, validation.Fields["posts"][0], "best answer")
	})

	t.Run("Error - needs two posts", func(t *testing.T) {
		f := newFixture(t)
		paper := f.paper(t, f.general, f.moderator, "Source paper", 0)

		_, err := f.service.MergePosts(ctx, f.actor, paper, MergePostsInput{Posts: []uint{*paper.FirstPostID}})
		validation, ok := apperr.AsValidation(err)
		require.True(t, ok)
		assert.Contains(t, validation.Fields["posts"][0], "at least 2")
	})
}
