package synchronize_test

import (
	"testing"
	"time"

	"github.com/Kyz7/limitless/internal/models"
	"github.com/Kyz7/limitless/internal/synchronize"
	"github.com/Kyz7/limitless/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var postedOn = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestPaper(t *testing.T) {
	db := testutils.TestDB(t)
	category := testutils.CreateCategory(t, db, "General", nil)
	alice := testutils.CreateUser(t, db, "alice")
	bob := testutils.CreateUser(t, db, "bob")

	t.Run("Success - counts approved replies and tracks last post", func(t *testing.T) {
		paper := testutils.CreatePaper(t, db, category, alice, "Synchronized paper", postedOn)
		testutils.CreatePost(t, db, paper, bob, postedOn.Add(time.Minute))
		last := testutils.CreatePost(t, db, paper, alice, postedOn.Add(2*time.Minute))
		pending := testutils.CreatePost(t, db, paper, bob, postedOn.Add(3*time.Minute))
		require.NoError(t, db.Model(pending).Update("is_unapproved", true).Error)

		paper = testutils.ReloadPaper(t, db, paper.ID)
		require.NoError(t, synchronize.Paper(db, paper))

		stored := testutils.ReloadPaper(t, db, paper.ID)
		assert.Equal(t, 2, stored.Replies)
		assert.True(t, stored.HasUnapprovedPosts)
		require.NotNil(t, stored.LastPostID)
		assert.Equal(t, last.ID, *stored.LastPostID)
		assert.Equal(t, "alice", stored.StarterName)
	})

	t.Run("Success - poll presence", func(t *testing.T) {
		paper := testutils.CreatePaper(t, db, category, alice, "Paper with poll", postedOn)
		require.NoError(t, db.Create(&models.Poll{CategoryID: category.ID, PaperID: paper.ID, Question: "Yes?"}).Error)

		require.NoError(t, synchronize.Paper(db, paper))
		assert.True(t, testutils.ReloadPaper(t, db, paper.ID).HasPoll)
	})
}

func TestCategories(t *testing.T) {
	db := testutils.TestDB(t)
	general := testutils.CreateCategory(t, db, "General", nil)
	other := testutils.CreateCategory(t, db, "Other", nil)
	alice := testutils.CreateUser(t, db, "alice")

	first := testutils.CreatePaper(t, db, general, alice, "First paper", postedOn)
	testutils.CreatePost(t, db, first, alice, postedOn.Add(time.Hour))
	second := testutils.CreatePaper(t, db, general, alice, "Second paper", postedOn.Add(time.Minute))
	hidden := testutils.CreatePaper(t, db, other, alice, "Hidden paper", postedOn)
	require.NoError(t, db.Model(&models.Paper{}).Where("id = ?", hidden.ID).Update("is_hidden", true).Error)

	t.Run("Success - counters and last paper", func(t *testing.T) {
		require.NoError(t, synchronize.Categories(db, general.ID, other.ID, general.ID))

		var stored models.Category
		require.NoError(t, db.First(&stored, general.ID).Error)
		assert.Equal(t, 2, stored.Papers)
		assert.Equal(t, 3, stored.Posts)
		require.NotNil(t, stored.LastPaperID)
		assert.Equal(t, first.ID, *stored.LastPaperID)
		assert.NotEqual(t, second.ID, *stored.LastPaperID)

		var emptied models.Category
		require.NoError(t, db.First(&emptied, other.ID).Error)
		assert.Equal(t, "Other", emptied.Name)
		assert.Zero(t, emptied.Papers)
		assert.Nil(t, emptied.LastPaperID)
	})

	t.Run("Success - nothing to do", func(t *testing.T) {
		assert.NoError(t, synchronize.Categories(db))
	})
}
