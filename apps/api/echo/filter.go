package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/studio/core/safety"
)

type filterApi struct {
	filter   *safety.Filter
	validate *validator.Validate
}

func registerFilterAPI(g *echo.Group, filter *safety.Filter, validate *validator.Validate) {
	api := filterApi{filter: filter, validate: validate}
	g.POST("/filter", api.check)
}

// check classifies the text; a flagged text is a successful check, not a client error.
func (api *filterApi) check(ctx echo.Context) error {
	var data FilterRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to FilterRequest")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, api.filter.Check(data.Text))
}

type FilterRequest struct {
	Text string `json:"text" validate:"max=20000"`
}
