package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/studio/core/identity"
)

var identityKinds = map[string]string{
	identity.AnonymousPrefix: identity.AnonymousKey,
	identity.VoterPrefix:     identity.VoterKey,
}

func registerIdentityAPI(g *echo.Group) {
	g.POST("/identities/:kind", issueIdentity)
}

// issueIdentity returns a fresh id; clients keep it in their own storage, under Key.
func issueIdentity(ctx echo.Context) error {
	kind := ctx.Param("kind")
	key, ok := identityKinds[kind]
	if !ok {
		return errHttpNotFound
	}

	id, err := identity.Generate(kind)
	if err != nil {
		return errors.Wrap(err, "generating identity")
	}
	return ctx.JSON(http.StatusCreated, IdentityResponse{ID: id, Kind: kind, Key: key})
}

type IdentityResponse struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
	Key  string `json:"key"`
}
