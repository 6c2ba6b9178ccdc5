package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/studio/core"
)

const (
	orderingParam = "ordering"
	limitParam    = "limit"
)

// Ordering binds `?ordering=-votes,created_at`; a leading "-" means descending.
type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}

	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field == "" {
			continue
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// Limit binds `?limit=N`; zero when absent.
type Limit struct {
	Limit int
}

func (l *Limit) Bind(ctx echo.Context) error {
	err := echo.QueryParamsBinder(ctx).Int(limitParam, &l.Limit).BindError()
	if err != nil {
		return core.NewValidationError(errors.New("invalid limit"), core.FieldError{Field: limitParam, Error: "must be an integer"})
	}
	return nil
}
