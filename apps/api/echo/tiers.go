package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/studio/core"
	"github.com/trezcool/studio/core/tier"
)

type tierApi struct {
	catalog  *tier.Catalog
	validate *validator.Validate
}

func registerTierAPI(g *echo.Group, catalog *tier.Catalog, validate *validator.Validate) {
	api := tierApi{catalog: catalog, validate: validate}

	g.GET("/tiers", api.query)
	g.GET("/tiers/:id", api.retrieve)
	g.GET("/courses/:id/tier", api.courseTier)
	g.POST("/progress/evaluate", api.evaluate)
}

func (api *tierApi) query(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.catalog.Tiers())
}

func (api *tierApi) retrieve(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}
	t, ok := api.catalog.Tier(id)
	if !ok {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *tierApi) courseTier(ctx echo.Context) error {
	courseID := core.CleanString(ctx.Param("id"), true /* lower */)
	return ctx.JSON(http.StatusOK, CourseTierResponse{
		CourseID: courseID,
		TierID:   api.catalog.TierForCourse(courseID),
		Known:    api.catalog.HasCourse(courseID),
	})
}

// evaluate runs the tier engine over a client supplied completion set, without storing anything.
func (api *tierApi) evaluate(ctx echo.Context) error {
	var data EvaluateRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EvaluateRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	completed := tier.NewSet(data.Completed...)
	return ctx.JSON(http.StatusOK, EvaluateResponse{
		Tiers:           api.catalog.Summaries(completed),
		UnlockedTierIDs: api.catalog.UnlockedTierIDs(completed),
	})
}

type (
	CourseTierResponse struct {
		CourseID string `json:"course_id"`
		TierID   int    `json:"tier_id"`
		Known    bool   `json:"known"`
	}

	EvaluateRequest struct {
		Completed []string `json:"completed" validate:"max=500,dive,required"`
	}

	EvaluateResponse struct {
		Tiers           []tier.Summary `json:"tiers"`
		UnlockedTierIDs []int          `json:"unlocked_tier_ids"`
	}
)

func (er *EvaluateRequest) Validate(validate *validator.Validate) error {
	for i, c := range er.Completed {
		er.Completed[i] = core.CleanString(c, true /* lower */)
	}
	return validate.Struct(er)
}
