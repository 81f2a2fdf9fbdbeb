package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/jnanisc/backend/apps/api/echo"
	"github.com/jnanisc/backend/core"
	"github.com/jnanisc/backend/core/role"
	"github.com/jnanisc/backend/core/user"
	emailsvc "github.com/jnanisc/backend/services/email"
	logsvc "github.com/jnanisc/backend/services/logger"
	"github.com/jnanisc/backend/storage/database"
	mongorepos "github.com/jnanisc/backend/storage/database/mongo"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up DB
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := database.Open(ctx, conf)
	cancel()
	if err != nil {
		logger.Fatal(fmt.Sprintf("connecting to database: %v", err), err)
	}
	defer func() {
		if err = database.Close(context.Background(), db); err != nil {
			logger.Error("failed to close database connection", err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	usrSvc := user.NewService(mongorepos.NewUserRepository(db), mailSvc, conf)
	roleSvc := role.NewService(mongorepos.NewRoleRepository(db))

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)

	// seed the admin role and default admin account on first boot
	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	if _, err = roleSvc.EnsureAdminRole(ctx); err != nil {
		cancel()
		logger.Fatal(fmt.Sprintf("ensuring admin role: %v", err), err)
	}
	if _, err = usrSvc.EnsureDefaultAdmin(ctx); err != nil {
		cancel()
		logger.Fatal(fmt.Sprintf("ensuring default admin: %v", err), err)
	}
	cancel()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		&echoapi.Options{
			Addr:       conf.Server.Addr,
			Conf:       conf,
			Logger:     logger,
			UserSvc:    usrSvc,
			RoleSvc:    roleSvc,
			Validate:   validate,
			Translator: translator,
			HealthCheck: func(ctx context.Context) error {
				return database.Ping(ctx, db)
			},
		},
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	// =========================================================================
	// Shutdown

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err = <-serverErrors:
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-shutdown:
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err = server.Stop(ctx); err != nil {
			logger.Fatal(fmt.Sprintf("could not stop server gracefully: %v", err), err)
		}
	}
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
