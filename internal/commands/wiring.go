// Package commands holds the cobra commands behind the tenantflow binary.
package commands

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/beesaferoot/tenantflow/internal/config"
	"github.com/beesaferoot/tenantflow/internal/identity"
	"github.com/beesaferoot/tenantflow/internal/mailer"
	"github.com/beesaferoot/tenantflow/internal/onboarding"
	"github.com/beesaferoot/tenantflow/internal/store"
)

// app is the wired object graph shared by the commands. Everything hangs off
// the config; nothing is a package global.
type app struct {
	cfg config.Config
	log zerolog.Logger
	db  *gorm.DB

	invitations *store.InvitationStore
	properties  *store.PropertyStore
	profiles    *store.ProfileStore
	tenants     *store.TenantStore
	attempts    *store.AttemptStore

	notifier     mailer.Notifier
	orchestrator *onboarding.Orchestrator
	inviter      *onboarding.Inviter
	reconciler   *onboarding.Reconciler
}

func buildApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	db, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:         cfg,
		log:         log,
		db:          db,
		invitations: store.NewInvitationStore(db),
		properties:  store.NewPropertyStore(db),
		profiles:    store.NewProfileStore(db),
		tenants:     store.NewTenantStore(db),
		attempts:    store.NewAttemptStore(db),
	}

	if cfg.SMTPAddr != "" {
		a.notifier = mailer.NewSMTPNotifier(cfg.SMTPAddr, cfg.SMTPFrom)
	} else {
		a.notifier = mailer.NewLogNotifier(log)
	}

	a.orchestrator = onboarding.NewOrchestrator(onboarding.Deps{
		Invitations: a.invitations,
		Properties:  a.properties,
		Profiles:    a.profiles,
		Tenants:     a.tenants,
		Attempts:    a.attempts,
		Identity:    identity.NewClient(cfg.AuthServiceURL, []byte(cfg.AuthServiceSecret)),
		Notifier:    a.notifier,
		Log:         log,
	})
	a.inviter = onboarding.NewInviter(a.invitations, a.properties, a.notifier, cfg.AppBaseURL, log)
	a.reconciler = onboarding.NewReconciler(a.orchestrator, cfg.ReconcileAfter, log)

	return a, nil
}

func newLogger(level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("parse log level %q: %w", level, err)
	}
	return zerolog.New(os.Stdout).Level(lvl).With().Timestamp().Logger(), nil
}
