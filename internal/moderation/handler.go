package moderation

import (
	"context"

	"github.com/Kyz7/limitless/internal/acl"
	"github.com/Kyz7/limitless/internal/apperr"
	"github.com/Kyz7/limitless/internal/auth"
	"github.com/Kyz7/limitless/internal/models"
	"github.com/Kyz7/limitless/internal/permissions"
	"github.com/Kyz7/limitless/internal/response"
	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type TitleRequest struct {
	Title string `json:"title"`
}

type WeightRequest struct {
	Weight int `json:"weight"`
}

type MoveRequest struct {
	CategoryID uint `json:"category"`
}

type DeletePapersRequest struct {
	Papers []uint `json:"papers"`
}

type ParticipantRequest struct {
	Username string `json:"username"`
}

type OwnerRequest struct {
	Owner uint `json:"owner"`
}

func actorOf(c *fiber.Ctx) Actor {
	return Actor{User: auth.CurrentUser(c), ACL: auth.CurrentACL(c)}
}

// fail writes err, logging the ones that are not the client's fault.
func (h *Handler) fail(c *fiber.Ctx, err error) error {
	if !apperr.IsUserFacing(err) {
		h.service.log.Error().Err(err).Str("path", c.Path()).Msg("moderation request failed")
	}
	return response.FromError(c, err)
}

func (h *Handler) paper(c *fiber.Ctx) (*models.Paper, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return nil, apperr.NotFound("paper")
	}
	return h.service.Paper(c.UserContext(), auth.CurrentACL(c), uint(id))
}

func (h *Handler) privatePaper(c *fiber.Ctx) (*models.Paper, error) {
	paper, err := h.paper(c)
	if err != nil {
		return nil, err
	}
	if !paper.IsPrivate() {
		return nil, apperr.NotFound("paper")
	}
	return paper, nil
}

func page(c *fiber.Ctx) int {
	p := c.QueryInt("page", 1)
	if p < 1 {
		return 1
	}
	return p
}

func (h *Handler) CurrentACL(c *fiber.Ctx) error {
	return response.Success(c, auth.CurrentACL(c), "")
}

func (h *Handler) ListPapers(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.NotFound(c, "category")
	}
	user := auth.CurrentACL(c)

	category, err := h.service.Category(c.UserContext(), user, uint(id))
	if err != nil {
		return h.fail(c, err)
	}
	n := page(c)
	papers, total, err := h.service.PapersPage(c.UserContext(), user, category, n)
	if err != nil {
		return h.fail(c, err)
	}
	return response.SuccessWithMeta(c, papers, response.CalculateMeta(n, h.service.limits.PapersPerPage, total), "")
}

func (h *Handler) GetPaper(c *fiber.Ctx) error {
	paper, err := h.paper(c)
	if err != nil {
		return h.fail(c, err)
	}
	return response.Success(c, paper, "")
}

func (h *Handler) ListPosts(c *fiber.Ctx) error {
	paper, err := h.paper(c)
	if err != nil {
		return h.fail(c, err)
	}
	n := page(c)
	posts, total, err := h.service.PostsPage(c.UserContext(), auth.CurrentACL(c), paper, n)
	if err != nil {
		return h.fail(c, err)
	}
	return response.SuccessWithMeta(c, posts, response.CalculateMeta(n, h.service.limits.PostsPerPage, total), "")
}

type guard func(*acl.UserACL, *models.Paper) error

type paperAction func(ctx context.Context, actor *models.User, paper *models.Paper) (bool, error)

// act builds a handler that loads the paper, runs check and then action.
func (h *Handler) act(check guard, action paperAction, message string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		paper, err := h.paper(c)
		if err != nil {
			return h.fail(c, err)
		}
		user := auth.CurrentACL(c)
		if err := check(user, paper); err != nil {
			return h.fail(c, err)
		}

		changed, err := action(c.UserContext(), auth.CurrentUser(c), paper)
		if err != nil {
			return h.fail(c, err)
		}
		permissions.AddACLToPaper(user, paper)
		return response.Success(c, fiber.Map{"changed": changed, "paper": paper}, message)
	}
}

func allowClosePaper(user *acl.UserACL, paper *models.Paper) error {
	if user.IsAnonymous {
		return apperr.SignInRequired("You have to sign in to close papers.")
	}
	if user.Category(paper.CategoryID).CanClosePapers == 0 {
		return apperr.Denied(apperr.ReasonNoPermission, "You don't have permission to close or open this paper.")
	}
	return nil
}

func (h *Handler) Close() fiber.Handler {
	return h.act(allowClosePaper, h.service.Close, "Paper closed")
}

func (h *Handler) Open() fiber.Handler {
	return h.act(allowClosePaper, h.service.Open, "Paper opened")
}

func (h *Handler) Hide() fiber.Handler {
	return h.act(permissions.AllowHidePaper, h.service.Hide, "Paper hidden")
}

func (h *Handler) Unhide() fiber.Handler {
	return h.act(permissions.AllowUnhidePaper, h.service.Unhide, "Paper revealed")
}

func (h *Handler) Approve() fiber.Handler {
	return h.act(permissions.AllowApprovePaper, h.service.Approve, "Paper approved")
}

func (h *Handler) ChangeTitle(c *fiber.Ctx) error {
	var body TitleRequest
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}
	title, err := h.service.ValidateTitle(body.Title)
	if err != nil {
		return h.fail(c, err)
	}

	return h.act(permissions.AllowEditPaper, func(ctx context.Context, actor *models.User, paper *models.Paper) (bool, error) {
		return h.service.ChangeTitle(ctx, actor, paper, title)
	}, "Paper title changed")(c)
}

func (h *Handler) ChangeWeight(c *fiber.Ctx) error {
	var body WeightRequest
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}

	switch body.Weight {
	case models.WeightGlobal:
		return h.act(permissions.AllowPinPaperGlobally, h.service.PinGlobally, "Paper pinned globally")(c)
	case models.WeightPinned:
		return h.act(permissions.AllowPinPaper, h.service.PinLocally, "Paper pinned")(c)
	case models.WeightDefault:
		return h.act(permissions.AllowPinPaper, h.service.Unpin, "Paper unpinned")(c)
	}
	return h.fail(c, apperr.Invalid("weight", "Ensure this value is between 0 and 2."))
}

func (h *Handler) Move(c *fiber.Ctx) error {
	var body MoveRequest
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}
	user := auth.CurrentACL(c)

	category, err := h.service.Category(c.UserContext(), user, body.CategoryID)
	if err != nil || category.IsPrivatePapers() {
		return h.fail(c, apperr.Invalid("category", "Requested category could not be found."))
	}
	if err := permissions.AllowStartPaper(user, category); err != nil {
		return h.fail(c, apperr.Invalid("category", "You can't create new papers in selected category."))
	}

	return h.act(permissions.AllowMovePaper, func(ctx context.Context, actor *models.User, paper *models.Paper) (bool, error) {
		return h.service.Move(ctx, actor, paper, category)
	}, "Paper moved")(c)
}

func (h *Handler) Delete(c *fiber.Ctx) error {
	paper, err := h.paper(c)
	if err != nil {
		return h.fail(c, err)
	}
	if err := permissions.AllowDeletePaper(auth.CurrentACL(c), paper); err != nil {
		return h.fail(c, err)
	}
	if _, err := h.service.Delete(c.UserContext(), auth.CurrentUser(c), paper); err != nil {
		return h.fail(c, err)
	}
	return response.NoContent(c)
}

func (h *Handler) DeletePapers(c *fiber.Ctx) error {
	var body DeletePapersRequest
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}
	if err := h.service.DeletePapers(c.UserContext(), actorOf(c), body.Papers); err != nil {
		return h.fail(c, err)
	}
	return response.NoContent(c)
}

func (h *Handler) MergePapers(c *fiber.Ctx) error {
	var body MergePapersInput
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}
	paper, err := h.service.MergePapers(c.UserContext(), actorOf(c), body)
	if err != nil {
		return h.fail(c, err)
	}
	return response.Created(c, paper, "Papers merged")
}

func (h *Handler) MergePaper(c *fiber.Ctx) error {
	var body MergePaperInput
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}
	paper, err := h.paper(c)
	if err != nil {
		return h.fail(c, err)
	}
	merged, err := h.service.MergePaper(c.UserContext(), actorOf(c), paper, body)
	if err != nil {
		return h.fail(c, err)
	}
	return response.Success(c, merged, "Paper merged")
}

func (h *Handler) MovePosts(c *fiber.Ctx) error {
	var body MovePostsInput
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}
	paper, err := h.paper(c)
	if err != nil {
		return h.fail(c, err)
	}
	target, err := h.service.MovePosts(c.UserContext(), actorOf(c), paper, body)
	if err != nil {
		return h.fail(c, err)
	}
	return response.Success(c, target, "Posts moved")
}

func (h *Handler) SplitPosts(c *fiber.Ctx) error {
	var body SplitPostsInput
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}
	paper, err := h.paper(c)
	if err != nil {
		return h.fail(c, err)
	}
	created, err := h.service.SplitPosts(c.UserContext(), actorOf(c), paper, body)
	if err != nil {
		return h.fail(c, err)
	}
	return response.Created(c, created, "Posts split to new paper")
}

func (h *Handler) MergePosts(c *fiber.Ctx) error {
	var body MergePostsInput
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}
	paper, err := h.paper(c)
	if err != nil {
		return h.fail(c, err)
	}
	post, err := h.service.MergePosts(c.UserContext(), actorOf(c), paper, body)
	if err != nil {
		return h.fail(c, err)
	}
	return response.Success(c, post, "Posts merged")
}

func (h *Handler) AddParticipant(c *fiber.Ctx) error {
	var body ParticipantRequest
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}
	paper, err := h.privatePaper(c)
	if err != nil {
		return h.fail(c, err)
	}
	if _, err := h.service.InviteParticipant(c.UserContext(), actorOf(c), paper, body.Username); err != nil {
		return h.fail(c, err)
	}
	return response.Created(c, paper.ParticipantsList, "Participant added")
}

func (h *Handler) RemoveParticipant(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("user_id")
	if err != nil || userID <= 0 {
		return response.BadRequest(c, "Invalid user ID", nil)
	}
	paper, err := h.privatePaper(c)
	if err != nil {
		return h.fail(c, err)
	}
	deleted, err := h.service.RemoveParticipant(c.UserContext(), actorOf(c), paper, uint(userID))
	if err != nil {
		return h.fail(c, err)
	}
	if deleted {
		return response.Success(c, fiber.Map{"deleted": true}, "Paper deleted")
	}
	return response.Success(c, fiber.Map{"deleted": false, "participants": paper.ParticipantsList}, "Participant removed")
}

func (h *Handler) ChangeOwner(c *fiber.Ctx) error {
	var body OwnerRequest
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}
	paper, err := h.privatePaper(c)
	if err != nil {
		return h.fail(c, err)
	}
	if err := h.service.ChangeOwner(c.UserContext(), actorOf(c), paper, body.Owner); err != nil {
		return h.fail(c, err)
	}
	return response.Success(c, paper.ParticipantsList, "Paper owner changed")
}

// Register mounts the paper routes. protect runs before every mutating
// route.
func (h *Handler) Register(app fiber.Router, protect fiber.Handler) {
	app.Get("/acl", h.CurrentACL)
	app.Get("/categories/:id/papers", h.ListPapers)

	papers := app.Group("/papers")
	papers.Post("/merge", protect, h.MergePapers)
	papers.Delete("/", protect, h.DeletePapers)

	papers.Get("/:id", h.GetPaper)
	papers.Get("/:id/posts", h.ListPosts)
	papers.Delete("/:id", protect, h.Delete)
	papers.Post("/:id/title", protect, h.ChangeTitle)
	papers.Post("/:id/weight", protect, h.ChangeWeight)
	papers.Post("/:id/close", protect, h.Close())
	papers.Post("/:id/open", protect, h.Open())
	papers.Post("/:id/hide", protect, h.Hide())
	papers.Post("/:id/unhide", protect, h.Unhide())
	papers.Post("/:id/approve", protect, h.Approve())
	papers.Post("/:id/move", protect, h.Move)
	papers.Post("/:id/merge", protect, h.MergePaper)

	papers.Post("/:id/posts/move", protect, h.MovePosts)
	papers.Post("/:id/posts/split", protect, h.SplitPosts)
	papers.Post("/:id/posts/merge", protect, h.MergePosts)

	papers.Post("/:id/participants", protect, h.AddParticipant)
	papers.Delete("/:id/participants/:user_id", protect, h.RemoveParticipant)
	papers.Post("/:id/owner", protect, h.ChangeOwner)
}
