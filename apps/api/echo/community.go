package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/studio/core/community"
)

type communityApi struct {
	svc      community.ServiceInterface
	validate *validator.Validate
}

func registerCommunityAPI(g *echo.Group, svc community.ServiceInterface, validate *validator.Validate) {
	api := communityApi{svc: svc, validate: validate}

	pg := g.Group("/posts")
	pg.GET("", api.query)
	pg.POST("", api.create)
	pg.GET("/:id", api.retrieve)
	pg.POST("/:id/votes", api.vote)
}

func (api *communityApi) query(ctx echo.Context) error {
	var limit Limit
	if err := limit.Bind(ctx); err != nil {
		return err
	}
	var ordering Ordering
	ordering.Bind(ctx)

	posts, err := api.svc.List(ctx.Request().Context(), limit.Limit, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "listing posts")
	}
	return ctx.JSON(http.StatusOK, posts)
}

func (api *communityApi) create(ctx echo.Context) error {
	var data community.NewPost
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPost")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	post, err := api.svc.Submit(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "submitting post")
	}
	return ctx.JSON(http.StatusCreated, post)
}

func (api *communityApi) retrieve(ctx echo.Context) error {
	post, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting post")
	}
	return ctx.JSON(http.StatusOK, post)
}

func (api *communityApi) vote(ctx echo.Context) error {
	var data community.NewVote
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewVote")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	post, err := api.svc.Vote(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "voting")
	}
	return ctx.JSON(http.StatusOK, post)
}
