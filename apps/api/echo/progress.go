package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/studio/core/progress"
)

type progressApi struct {
	svc      progress.ServiceInterface
	validate *validator.Validate
}

func registerProgressAPI(g *echo.Group, svc progress.ServiceInterface, validate *validator.Validate) {
	api := progressApi{svc: svc, validate: validate}

	lg := g.Group("/learners/:id")
	lg.GET("/progress", api.retrieve)
	lg.POST("/completions", api.complete)
}

func (api *progressApi) retrieve(ctx echo.Context) error {
	ov, err := api.svc.Overview(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting progress overview")
	}
	return ctx.JSON(http.StatusOK, ov)
}

func (api *progressApi) complete(ctx echo.Context) error {
	var data progress.NewCompletion
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCompletion")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ov, err := api.svc.Complete(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "completing course")
	}
	return ctx.JSON(http.StatusCreated, ov)
}
