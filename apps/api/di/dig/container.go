// Package dig_container wires the API dependencies with go.uber.org/dig.
package dig_container

import (
	"context"
	"fmt"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/studio/apps/api/echo"
	"github.com/trezcool/studio/core"
	"github.com/trezcool/studio/core/community"
	"github.com/trezcool/studio/core/progress"
	"github.com/trezcool/studio/core/safety"
	"github.com/trezcool/studio/core/tier"
	emailsvc "github.com/trezcool/studio/services/email"
	logsvc "github.com/trezcool/studio/services/logger"
	"github.com/trezcool/studio/storage/database"
	inmemdb "github.com/trezcool/studio/storage/database/inmem"
	pgrepos "github.com/trezcool/studio/storage/database/postgres"
)

type (
	DBLoggerParam struct {
		dig.In
		Logger core.Logger `name:"dbLogger"`
	}

	// Repositories are the storage backend selected by the `storage` config.
	Repositories struct {
		dig.Out
		Progress  progress.Repository
		Community community.Repository
	}

	// Closer releases the storage backend.
	Closer func() error

	serverParams struct {
		dig.In
		Conf         *core.Config
		Logger       core.Logger
		ProgressSvc  progress.ServiceInterface
		CommunitySvc community.ServiceInterface
		Filter       *safety.Filter
		Validate     *validator.Validate
		Translator   ut.Translator
	}
)

func newConfig() (*core.Config, error) {
	conf := core.NewConfig()
	if err := conf.Validate(); err != nil {
		return nil, errors.Wrap(err, "validating config")
	}
	return conf, nil
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	ctx := context.Background()
	if err := database.CreateIfNotExist(ctx, conf); err != nil {
		return nil, err
	}
	db, err := database.Open(ctx, conf)
	if err != nil {
		return nil, err
	}
	if err = database.Migrate(db, "up"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func newRepositories(conf *core.Config, loggerParam DBLoggerParam) (Repositories, Closer) {
	if conf.Storage == core.StoragePostgres {
		db, err := setUpDB(conf)
		if err != nil {
			loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
		}
		repos := Repositories{
			Progress:  pgrepos.NewProgressRepository(db),
			Community: pgrepos.NewCommunityRepository(db),
		}
		return repos, db.Close
	}

	db := inmemdb.Open()
	repos := Repositories{
		Progress:  inmemdb.NewProgressRepository(db),
		Community: inmemdb.NewCommunityRepository(db),
	}
	return repos, func() error { return nil }
}

func newCatalog(conf *core.Config, validate *validator.Validate) (*tier.Catalog, error) {
	if conf.CatalogPath == "" {
		return tier.Default(), nil
	}
	return tier.LoadCatalog(conf.CatalogPath, validate)
}

func newFilter(conf *core.Config, logger core.Logger) (*safety.Filter, error) {
	if conf.SafetyPatternsPath == "" {
		return safety.NewDefault(), nil
	}
	f, err := safety.Load(conf.SafetyPatternsPath)
	if err != nil {
		return nil, err
	}
	logger.Info(fmt.Sprintf("safety patterns loaded from %s", conf.SafetyPatternsPath))
	return f, nil
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug || conf.SendgridApiKey == "" {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newValidator(translator ut.Translator) *validator.Validate {
	validate := core.NewValidator(translator)
	community.InitValidators(validate, translator)
	return validate
}

func newProgressService(repo progress.Repository, catalog *tier.Catalog, logger core.Logger) *progress.Service {
	return progress.NewService(repo, catalog, logger)
}

func newCommunityService(
	repo community.Repository,
	filter *safety.Filter,
	mailSvc core.EmailService,
	logger core.Logger,
	conf *core.Config,
) *community.Service {
	return community.NewService(repo, filter, mailSvc, logger, conf)
}

func newServer(p serverParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:         p.Conf,
		Logger:       p.Logger,
		ProgressSvc:  p.ProgressSvc,
		CommunitySvc: p.CommunitySvc,
		Filter:       p.Filter,
		Validate:     p.Validate,
		Translator:   p.Translator,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(newConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newRepositories))
	must(c.Provide(newEmailService))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(newValidator))
	must(c.Provide(newCatalog))
	must(c.Provide(newFilter))
	must(c.Provide(newProgressService, dig.As(new(progress.ServiceInterface))))
	must(c.Provide(newCommunityService, dig.As(new(community.ServiceInterface))))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
