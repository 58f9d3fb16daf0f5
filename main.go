package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/hieungocdinh/mad-project-n16/authentication"
	"github.com/hieungocdinh/mad-project-n16/families"
	"github.com/hieungocdinh/mad-project-n16/familytrees"
	"github.com/hieungocdinh/mad-project-n16/mail"
	"github.com/hieungocdinh/mad-project-n16/profiles"
	. "github.com/hieungocdinh/mad-project-n16/shared"
	"github.com/hieungocdinh/mad-project-n16/storage"
	"github.com/hieungocdinh/mad-project-n16/stories"
	. "github.com/hieungocdinh/mad-project-n16/store"
	"github.com/hieungocdinh/mad-project-n16/store/migrations"
	"github.com/hieungocdinh/mad-project-n16/users"

	"github.com/facebookgo/inject"
	kithttp "github.com/go-kit/kit/transport/http"
	"github.com/gorilla/mux"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres"
	"github.com/pkg/errors"
)

var (
	ctx             = context.Background()
	logger          = NewLogger("madgenealogy")
	config          *AppConfig
	db              *gorm.DB
	stringGenerator = &StringGenerator{}

	authenticationService = &authentication.AuthenticationService{}
	userService           = &users.UserService{}
	profileService        = &profiles.ProfileService{}
	familyService         = &families.FamilyService{}
	familyTreeService     = &familytrees.FamilyTreeService{}
	storyService          = &stories.StoryService{}

	authenticationHandlerFactory = &authentication.HandlerFactory{}
	userHandlerFactory           = &users.HandlerFactory{}
	profileHandlerFactory        = &profiles.HandlerFactory{}
	familyHandlerFactory         = &families.HandlerFactory{}
	familyTreeHandlerFactory     = &familytrees.HandlerFactory{}
	storyHandlerFactory          = &stories.HandlerFactory{}

	dbStore    = &Store{}
	gcsStorage = &storage.GoogleStorage{}
	mailer     = &mail.SesMailer{}
	firewall   = &authentication.Firewall{}
)

func init() {
	checkErrAndExit(initAppConfiguration())
	checkErrAndExit(initPostgresConnection())
	checkErrAndExit(initApplicationGraph())
	checkErrAndExit(mailer.Init(ctx))
}

func initAppConfiguration() (err error) {
	config, err = InitAppConfiguration()
	return
}

func initPostgresConnection() (err error) {
	connectString := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		config.PgContactPoint,
		config.PgContactPort,
		config.PgUsername,
		config.PgPassword,
		config.PgDbName)
	db, err = gorm.Open("postgres", connectString)
	if err != nil {
		return
	}

	db.LogMode(true)
	db.SetLogger(logger)
	return
}

func initApplicationGraph() error {
	g := inject.Graph{}
	g.Provide(
		&inject.Object{Value: config},
		&inject.Object{Value: authenticationService},
		&inject.Object{Value: userService},
		&inject.Object{Value: profileService},
		&inject.Object{Value: familyService},
		&inject.Object{Value: familyTreeService},
		&inject.Object{Value: storyService},
		&inject.Object{Value: authenticationHandlerFactory},
		&inject.Object{Value: userHandlerFactory},
		&inject.Object{Value: profileHandlerFactory},
		&inject.Object{Value: familyHandlerFactory},
		&inject.Object{Value: familyTreeHandlerFactory},
		&inject.Object{Value: storyHandlerFactory},
		&inject.Object{Value: db},
		&inject.Object{Value: stringGenerator},
		&inject.Object{Value: dbStore},
		&inject.Object{Value: gcsStorage},
		&inject.Object{Value: mailer, Name: "mailer"},
		&inject.Object{Value: firewall},
		&inject.Object{Value: logger},
	)
	if err := g.Populate(); err != nil {
		return errors.Wrap(err, "failed to populate")
	}
	return nil
}

func main() {
	if config.StartupMigration {
		applySqlSchemaMigrations(ctx)
	}
	startHttpServer(ctx)
}

func applySqlSchemaMigrations(ctx context.Context) {
	logger.Info(ctx, "applying sql schema migrations")
	migrationResult := migrations.Up(migrations.ApplyOptions{
		SourceURL: fmt.Sprintf("file://%s", config.SqlMigrationsSourceDir),
		DatabaseURL: fmt.Sprintf("postgres://%v:%v/%v?sslmode=disable&user=%s&password=%s",
			config.PgContactPoint, config.PgContactPort, config.PgDbName, config.PgUsername, config.PgPassword),
	})
	checkErrAndExit(migrationResult.Err)
	if !migrationResult.Changes {
		logger.Info(ctx, "no new migrations applied")
	}
}

func startHttpServer(ctx context.Context) {
	authOpts := []kithttp.ServerOption{
		kithttp.ServerErrorLogger(logger),
		kithttp.ServerErrorEncoder(authentication.EncodeError),
	}

	userOpts := []kithttp.ServerOption{
		kithttp.ServerErrorLogger(logger),
		kithttp.ServerErrorEncoder(users.EncodeError),
	}

	profileOpts := []kithttp.ServerOption{
		kithttp.ServerErrorLogger(logger),
		kithttp.ServerErrorEncoder(profiles.EncodeError),
	}

	familyOpts := []kithttp.ServerOption{
		kithttp.ServerErrorLogger(logger),
		kithttp.ServerErrorEncoder(families.EncodeError),
	}

	familyTreeOpts := []kithttp.ServerOption{
		kithttp.ServerErrorLogger(logger),
		kithttp.ServerErrorEncoder(familytrees.EncodeError),
	}

	storyOpts := []kithttp.ServerOption{
		kithttp.ServerErrorLogger(logger),
		kithttp.ServerErrorEncoder(stories.EncodeError),
	}

	router := mux.NewRouter()

	router.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	router.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	router.Handle("/auth/login", authenticationHandlerFactory.Login(authOpts)).Methods(http.MethodPost)

	apiRouterV1 := router.PathPrefix("/api/v1").Subrouter()

	apiRouterV1.Handle("/users", firewall.Roles(userHandlerFactory.Save(userOpts), ROLE_ADMIN)).Methods(http.MethodPost)
	apiRouterV1.Handle("/users", firewall.Roles(userHandlerFactory.List(userOpts), ROLE_ADMIN, ROLE_USER, ROLE_FAMILY_OWNER)).Methods(http.MethodGet)
	apiRouterV1.Handle("/users/without-family", firewall.Roles(userHandlerFactory.ListWithoutFamily(userOpts), ROLE_ADMIN, ROLE_FAMILY_OWNER)).Methods(http.MethodGet)
	apiRouterV1.Handle("/users/{userId}", firewall.Roles(userHandlerFactory.Get(userOpts), ROLE_ADMIN, ROLE_USER, ROLE_FAMILY_OWNER)).Methods(http.MethodGet)
	apiRouterV1.Handle("/users/{userId}", firewall.Roles(userHandlerFactory.Delete(userOpts), ROLE_ADMIN)).Methods(http.MethodDelete)
	apiRouterV1.Handle("/users/{userId}/family-suggestions", firewall.Roles(familyHandlerFactory.Suggestions(familyOpts), ROLE_ADMIN, ROLE_USER, ROLE_FAMILY_OWNER)).Methods(http.MethodGet)

	apiRouterV1.Handle("/profiles", firewall.Roles(profileHandlerFactory.Create(profileOpts), ROLE_ADMIN, ROLE_FAMILY_OWNER)).Methods(http.MethodPost)
	apiRouterV1.Handle("/profiles/{profileId}", firewall.Roles(profileHandlerFactory.Get(profileOpts), ROLE_ADMIN, ROLE_USER, ROLE_FAMILY_OWNER)).Methods(http.MethodGet)
	apiRouterV1.Handle("/profiles/{profileId}", firewall.Roles(profileHandlerFactory.Update(profileOpts), ROLE_ADMIN, ROLE_USER, ROLE_FAMILY_OWNER)).Methods(http.MethodPut)
	apiRouterV1.Handle("/families/{familyId}/profiles", firewall.Roles(profileHandlerFactory.List(profileOpts), ROLE_ADMIN, ROLE_USER, ROLE_FAMILY_OWNER)).Methods(http.MethodGet)

	apiRouterV1.Handle("/families", firewall.Roles(familyHandlerFactory.Add(familyOpts), ROLE_ADMIN, ROLE_FAMILY_OWNER)).Methods(http.MethodPost)
	apiRouterV1.Handle("/families", firewall.Roles(familyHandlerFactory.List(familyOpts), ROLE_ADMIN, ROLE_USER, ROLE_FAMILY_OWNER)).Methods(http.MethodGet)
	apiRouterV1.Handle("/families/{familyId}", firewall.Roles(familyHandlerFactory.Get(familyOpts), ROLE_ADMIN, ROLE_USER, ROLE_FAMILY_OWNER)).Methods(http.MethodGet)
	apiRouterV1.Handle("/families/{familyId}", firewall.Roles(familyHandlerFactory.Update(familyOpts), ROLE_ADMIN, ROLE_FAMILY_OWNER)).Methods(http.MethodPut)
	apiRouterV1.Handle("/families/{familyId}", firewall.Roles(familyHandlerFactory.Delete(familyOpts), ROLE_ADMIN, ROLE_FAMILY_OWNER)).Methods(http.MethodDelete)

	apiRouterV1.Handle("/family-trees", firewall.Roles(familyTreeHandlerFactory.Save(familyTreeOpts), ROLE_ADMIN, ROLE_FAMILY_OWNER)).Methods(http.MethodPost)
	apiRouterV1.Handle("/family-trees/save-all", firewall.Roles(familyTreeHandlerFactory.SaveAll(familyTreeOpts), ROLE_ADMIN, ROLE_FAMILY_OWNER)).Methods(http.MethodPost)
	apiRouterV1.Handle("/family-trees", firewall.Roles(familyTreeHandlerFactory.List(familyTreeOpts), ROLE_ADMIN, ROLE_USER, ROLE_FAMILY_OWNER)).Methods(http.MethodGet)
	apiRouterV1.Handle("/family-trees/{familyTreeId}", firewall.Roles(familyTreeHandlerFactory.Get(familyTreeOpts), ROLE_ADMIN, ROLE_USER, ROLE_FAMILY_OWNER)).Methods(http.MethodGet)
	apiRouterV1.Handle("/family-trees/{familyTreeId}", firewall.Roles(familyTreeHandlerFactory.Delete(familyTreeOpts), ROLE_ADMIN, ROLE_FAMILY_OWNER)).Methods(http.MethodDelete)

	apiRouterV1.Handle("/stories", firewall.Roles(storyHandlerFactory.Add(storyOpts), ROLE_ADMIN, ROLE_USER, ROLE_FAMILY_OWNER)).Methods(http.MethodPost)
	apiRouterV1.Handle("/stories", firewall.Roles(storyHandlerFactory.List(storyOpts), ROLE_ADMIN, ROLE_USER, ROLE_FAMILY_OWNER)).Methods(http.MethodGet)
	apiRouterV1.Handle("/stories/{storyId}", firewall.Roles(storyHandlerFactory.Get(storyOpts), ROLE_ADMIN, ROLE_USER, ROLE_FAMILY_OWNER)).Methods(http.MethodGet)
	apiRouterV1.Handle("/stories/{storyId}", firewall.Roles(storyHandlerFactory.Update(storyOpts), ROLE_ADMIN, ROLE_USER, ROLE_FAMILY_OWNER)).Methods(http.MethodPut)
	apiRouterV1.Handle("/stories/{storyId}", firewall.Roles(storyHandlerFactory.Delete(storyOpts), ROLE_ADMIN, ROLE_USER, ROLE_FAMILY_OWNER)).Methods(http.MethodDelete)

	checkErrAndExit(http.ListenAndServe(config.ListenAddress,
		logger.RequestLoggerMiddleware(router),
	))
}

func checkErrAndExit(err error) {
	if err == nil {
		return
	}
	fmt.Println(err.Error())
	os.Exit(1)
}
