package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"

	"lsfd202201/internal/auth"
	"lsfd202201/internal/backup"
	"lsfd202201/internal/config"
	"lsfd202201/internal/database"
	"lsfd202201/internal/diag"
	"lsfd202201/internal/encryption"
	"lsfd202201/internal/mail"
	"lsfd202201/internal/site"
	"lsfd202201/internal/vault"
	"lsfd202201/internal/web"
)

// App is the application layer between the CLI and the site service.
// It constructs all dependencies from config and secrets and manages
// the store lifecycle on Close.
type App struct {
	cfg     *config.Config
	secrets *config.Secrets
	store   site.Store
	service *site.Service
	server  *web.Server
	diag    *diag.Diagnostics
	logger  site.Logger
	logFile *os.File
}

// NewApp creates a fully wired App from the given config. Secrets are read
// from the environment once, here. The caller must call Close when done.
func NewApp(cfg *config.Config) (*App, error) {
	secrets, err := config.SecretsFromEnv()
	if err != nil {
		return nil, err
	}

	runID := time.Now().UTC().Format("20060102T150405Z")
	logger, logFile, err := newLogger(cfg.LogDir, runID)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	store, err := database.NewStoreFromConfig(cfg.Database)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating store: %w", err)
	}

	if err := store.CheckMigrations(); err != nil {
		store.Close()
		logFile.Close()
		return nil, fmt.Errorf("database schema out of date: %w", err)
	}

	verifier, err := auth.NewVerifier(secrets.UploadPassword, secrets.AdminPassword, cfg.AdminUsers)
	if err != nil {
		store.Close()
		logFile.Close()
		return nil, fmt.Errorf("creating verifier: %w", err)
	}

	sender := mail.NewSenderFromConfig(cfg.Mail.Host, cfg.Mail.Port, secrets.MailUsername, secrets.MailPassword, cfg.Mail.Sender, cfg.Mail.Suppress)

	log := &slogAdapter{l: logger}
	svc := site.NewService(store, verifier, sender, log, site.RealClock{}, site.UUIDGenerator{}, secrets.AdminEmails)

	d, err := diag.New("lsfd202201")
	if err != nil {
		store.Close()
		logFile.Close()
		return nil, fmt.Errorf("creating diagnostics: %w", err)
	}

	server, err := web.NewServer(svc, verifier, secrets.SessionKey, log, d)
	if err != nil {
		store.Close()
		logFile.Close()
		return nil, fmt.Errorf("creating web server: %w", err)
	}

	return &App{
		cfg:     cfg,
		secrets: secrets,
		store:   store,
		service: svc,
		server:  server,
		diag:    d,
		logger:  log,
		logFile: logFile,
	}, nil
}

// Service exposes the site service for CLI operations (role seeding, users).
func (a *App) Service() *site.Service { return a.service }

// Store exposes the store for CLI operations (migrations).
func (a *App) Store() site.Store { return a.store }

// Router builds the public HTTP router, e.g. for route listing.
func (a *App) Router() chi.Router { return a.server.Router() }

// BackupService wires the snapshot pipeline from the backup section of the
// config: age encryption in front of the configured vault.
func (a *App) BackupService() (*backup.Service, error) {
	v, err := vault.NewVaultFromConfig(a.cfg.Backup.Vault)
	if err != nil {
		return nil, fmt.Errorf("creating vault: %w", err)
	}
	enc := encryption.NewAgeEncryptor(a.cfg.Backup)
	return backup.NewService(a.store, enc, v, site.RealClock{}, a.logger), nil
}

// Serve runs the public listener and the diagnostics listener until ctx is
// cancelled, then shuts both down gracefully.
func (a *App) Serve(ctx context.Context) error {
	public := &http.Server{
		Addr:    a.cfg.Server.Addr,
		Handler: a.server.Router(),
	}
	diagSrv := &http.Server{
		Addr:    a.cfg.Server.DiagAddr,
		Handler: a.diag.Router(),
	}

	errc := make(chan error, 2)
	go func() {
		a.logger.Info("listening", "addr", public.Addr)
		errc <- public.ListenAndServe()
	}()
	go func() {
		a.logger.Info("diagnostics listening", "addr", diagSrv.Addr)
		errc <- diagSrv.ListenAndServe()
	}()

	var err error
	select {
	case <-ctx.Done():
	case err = <-errc:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if serr := public.Shutdown(shutdownCtx); serr != nil && err == nil {
		err = serr
	}
	if serr := diagSrv.Shutdown(shutdownCtx); serr != nil && err == nil {
		err = serr
	}

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Close releases the store and the log file.
func (a *App) Close() error {
	var firstErr error
	if err := a.store.Close(); err != nil {
		firstErr = fmt.Errorf("closing store: %w", err)
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}
