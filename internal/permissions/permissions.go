// Package permissions holds the guards that authorize actions on papers,
// posts and events against a user's ACL document.
//
// Every guard comes in two forms. AllowX returns nil when the action is
// permitted, an *apperr.NotFoundError when the target must stay invisible
// and an *apperr.AuthorizationError otherwise. CanX projects that to a bool.
// Guards never mutate the document or the target.
package permissions

import (
	"fmt"
	"time"

	"github.com/Kyz7/limitless/internal/acl"
	"github.com/Kyz7/limitless/internal/apperr"
	"github.com/Kyz7/limitless/internal/clock"
	"github.com/Kyz7/limitless/internal/models"
)

var now clock.Clock = clock.Real()

// SetClock replaces the time source of the edit-window checks and returns
// a func restoring the previous one.
func SetClock(c clock.Clock) (restore func()) {
	prev := now
	now = c
	return func() { now = prev }
}

// withinWindow reports whether since is at most limit minutes ago. A limit
// of 0 means no limit. Exactly limit minutes still passes: elapsed time is
// compared as a duration, not truncated to whole minutes and compared with <.
func withinWindow(limit int, since time.Time) bool {
	if limit == 0 {
		return true
	}
	return now.Now().Sub(since) <= time.Duration(limit)*time.Minute
}

func minutes(n int) string {
	if n == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", n)
}

func tooOld(action, subject string, limit int) error {
	return apperr.Denied(apperr.ReasonTimeLimit, "You can't %s %s that are older than %s.", action, subject, minutes(limit))
}

func denied(format string, args ...any) error {
	return apperr.Denied(apperr.ReasonNoPermission, format, args...)
}

func categoryClosed(message string) error {
	return apperr.Deny(apperr.ReasonCategoryClosed, message)
}

func paperClosed(message string) error {
	return apperr.Deny(apperr.ReasonPaperClosed, message)
}

// closedGate rejects actions on content in a closed category or paper,
// unless the category lets the user close papers.
func closedGate(cat acl.CategoryACL, categoryIsClosed, paperIsClosed bool, categoryMsg, paperMsg string) error {
	if cat.CanClosePapers > 0 {
		return nil
	}
	if categoryIsClosed {
		return categoryClosed(categoryMsg)
	}
	if paperIsClosed {
		return paperClosed(paperMsg)
	}
	return nil
}

func postCategoryIsClosed(post *models.Post) bool {
	if post.Category != nil {
		return post.Category.IsClosed
	}
	return post.Paper != nil && post.Paper.CategoryIsClosed()
}

func postPaperIsClosed(post *models.Post) bool {
	return post.Paper != nil && post.Paper.IsClosed
}

func boolean(err error) bool {
	return err == nil
}
