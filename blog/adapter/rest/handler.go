package rest

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/mervel/storefront/blog/application"
	"github.com/mervel/storefront/blog/domain"
	pkgError "github.com/mervel/storefront/pkg/error"
	"github.com/mervel/storefront/pkg/utils"
)

type BlogHandler struct {
	posts *application.PostService
}

func NewBlogHandler(posts *application.PostService) *BlogHandler {
	return &BlogHandler{posts: posts}
}

func (h *BlogHandler) RegisterRoutes(api fiber.Router, admin fiber.Router) {
	api.Get("/blog", h.ListPublished)
	api.Get("/blog/:slug", h.GetPublished)

	admin.Get("/blog", h.AdminList)
	admin.Get("/blog/:id", h.AdminGet)
	admin.Post("/blog", h.Create)
	admin.Put("/blog/:id", h.Update)
	admin.Delete("/blog/:id", h.Delete)
}

func (h *BlogHandler) ListPublished(c *fiber.Ctx) error {
	posts, err := h.posts.ListPublished(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Posts retrieved",
		Results: summarize(posts),
	})
}

func (h *BlogHandler) GetPublished(c *fiber.Ctx) error {
	post, err := h.posts.GetPublished(c.UserContext(), c.Params("slug"))
	utils.PanicIfNeeded(mapError(err))

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Post retrieved",
		Results: post,
	})
}

func (h *BlogHandler) AdminList(c *fiber.Ctx) error {
	posts, err := h.posts.List(c.UserContext(), domain.PostFilter{
		Limit:  c.QueryInt("limit", 0),
		Offset: c.QueryInt("offset", 0),
	})
	utils.PanicIfNeeded(err)

	return c.JSON(fiber.Map{"data": posts, "count": len(posts)})
}

func (h *BlogHandler) AdminGet(c *fiber.Ctx) error {
	post, err := h.posts.Get(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(mapError(err))

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Post retrieved",
		Results: post,
	})
}

func (h *BlogHandler) Create(c *fiber.Ctx) error {
	var req PostRequest
	if err := c.BodyParser(&req); err != nil {
		utils.PanicIfNeeded(pkgError.ValidationError("invalid request body"))
	}

	post := &domain.Post{}
	req.apply(post)
	utils.PanicIfNeeded(mapError(h.posts.Create(c.UserContext(), post)))

	return c.Status(fiber.StatusCreated).JSON(utils.ResponseData{
		Status:  201,
		Code:    "SUCCESS",
		Message: "Post created",
		Results: post,
	})
}

func (h *BlogHandler) Update(c *fiber.Ctx) error {
	var req PostRequest
	if err := c.BodyParser(&req); err != nil {
		utils.PanicIfNeeded(pkgError.ValidationError("invalid request body"))
	}

	post, err := h.posts.Get(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(mapError(err))

	req.apply(post)
	utils.PanicIfNeeded(mapError(h.posts.Update(c.UserContext(), post)))

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Post updated",
		Results: post,
	})
}

func (h *BlogHandler) Delete(c *fiber.Ctx) error {
	utils.PanicIfNeeded(mapError(h.posts.Delete(c.UserContext(), c.Params("id"))))
	return c.SendStatus(fiber.StatusNoContent)
}

func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrPostNotFound):
		return pkgError.NotFoundError(err.Error())
	case errors.Is(err, domain.ErrDuplicateSlug):
		return pkgError.ConflictError(err.Error())
	}
	return err
}
