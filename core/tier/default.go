package tier

import (
	"os"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/trezcool/studio/core"
)

// DefaultTiers is the built-in course catalog.
var DefaultTiers = []Tier{
	{
		ID:             1,
		Name:           "AI Foundations",
		Description:    "What generative AI is, how it works, and where it fails.",
		UnlockCriteria: "Available to everyone.",
		CourseIDs:      []string{"ai-fundamentals", "prompting-basics", "ai-ethics-and-bias"},
	},
	{
		ID:             2,
		Name:           "Classroom Practitioner",
		Description:    "Using AI tools for planning, feedback and differentiated instruction.",
		UnlockCriteria: "Complete every AI Foundations course.",
		CourseIDs:      []string{"lesson-planning-with-ai", "ai-assisted-feedback", "assessment-integrity"},
	},
	{
		ID:             3,
		Name:           "AI Literacy Leader",
		Description:    "Leading AI adoption across a school: policy, research and mentoring.",
		UnlockCriteria: "Complete every Classroom Practitioner course.",
		CourseIDs:      []string{"school-ai-policy", "evaluating-ai-research", "student-ai-literacy", "mentoring-colleagues"},
	},
}

var (
	defaultCatalog     *Catalog
	defaultCatalogOnce sync.Once
)

// Default returns the catalog built from DefaultTiers.
func Default() *Catalog {
	defaultCatalogOnce.Do(func() {
		defaultCatalog = MustNewCatalog(DefaultTiers, core.NewValidator(core.NewTranslator()))
	})
	return defaultCatalog
}

// MustNewCatalog is like NewCatalog but panics on an invalid catalog.
func MustNewCatalog(tiers []Tier, validate *validator.Validate) *Catalog {
	c, err := NewCatalog(tiers, validate)
	if err != nil {
		panic(errors.Wrap(err, "building tier catalog"))
	}
	return c
}

type catalogFile struct {
	Tiers []Tier `yaml:"tiers"`
}

// LoadCatalog reads a YAML catalog. Falls back to the default catalog if path is empty or the file doesn't exist.
func LoadCatalog(path string, validate *validator.Validate) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, errors.Wrap(err, "reading catalog")
	}

	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "decoding catalog")
	}
	return NewCatalog(f.Tiers, validate)
}
