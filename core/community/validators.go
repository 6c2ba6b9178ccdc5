package community

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/studio/core"
	"github.com/trezcool/studio/core/identity"
)

var (
	anonIDTag  = "anonid"
	anonIDText = "invalid anonymous id"

	voterIDTag  = "voterid"
	voterIDText = "invalid voter id"
)

// InitValidators registers the community validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(anonIDTag, prefixedIDValidation(identity.AnonymousPrefix))
	core.RegisterCustomTranslation(validate, translator, anonIDTag, anonIDText)

	_ = validate.RegisterValidation(voterIDTag, prefixedIDValidation(identity.VoterPrefix))
	core.RegisterCustomTranslation(validate, translator, voterIDTag, voterIDText)
}

// Custom Validators

// prefixedIDValidation checks the field is a well formed id issued with the given prefix.
func prefixedIDValidation(prefix string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return identity.Valid(prefix, fl.Field().String())
	}
}
