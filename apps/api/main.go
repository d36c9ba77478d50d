package main

import (
	"log"
	"os"

	echoapi "github.com/trezcool/mwalimu/apps/api/echo"
	"github.com/trezcool/mwalimu/core"
	"github.com/trezcool/mwalimu/core/auth"
	"github.com/trezcool/mwalimu/core/composer"
	"github.com/trezcool/mwalimu/core/followup"
	"github.com/trezcool/mwalimu/core/student"
	credsvc "github.com/trezcool/mwalimu/services/credential"
	emailsvc "github.com/trezcool/mwalimu/services/email"
	gensvc "github.com/trezcool/mwalimu/services/generation"
	logsvc "github.com/trezcool/mwalimu/services/logger"
	"github.com/trezcool/mwalimu/storage/database"
	sqlxrepos "github.com/trezcool/mwalimu/storage/database/sqlx"
)

func main() {
	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(std, core.Conf)
	logger.Enable(!core.Conf.Debug)

	// set up DB
	db, err := database.Open(core.Conf)
	errAndDie(logger, err)
	defer db.Close()

	// set up services
	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}
	reconciler := auth.NewReconciler(credsvc.NewGoTrueStore(core.Conf.GoTrue.URL, core.Conf.GoTrue.APIKey))
	stSvc := student.NewService(sqlxrepos.NewStudentRepository(db))
	fuSvc := followup.NewService(sqlxrepos.NewFollowupRepository(db), mailSvc)
	cmpsr := composer.New(gensvc.NewOpenAIGenerator(
		core.Conf.OpenAI.APIKey, core.Conf.OpenAI.Model, core.Conf.OpenAI.Temperature,
	))
	validate, translator := core.NewValidator()

	// start API server
	app := echoapi.NewServer(
		&echoapi.Options{
			Addr:        core.Conf.Server.Addr,
			Logger:      logger,
			Reconciler:  reconciler,
			StudentSvc:  stSvc,
			FollowupSvc: fuSvc,
			Composer:    cmpsr,
			Validate:    validate,
			Translator:  translator,
		},
	)
	logger.Info("server starting on " + core.Conf.Server.Addr)
	app.Start()
}

func errAndDie(logger core.Logger, err error) {
	if err != nil {
		logger.Fatal(err.Error(), err)
	}
}
