package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/dmitrijs2005/filevault/internal/client/client"
	"github.com/dmitrijs2005/filevault/internal/client/config"
	"github.com/dmitrijs2005/filevault/internal/client/models"
	"github.com/dmitrijs2005/filevault/internal/client/repositories/session"
	"github.com/dmitrijs2005/filevault/internal/client/services"
)

type App struct {
	config      *config.Config
	authService services.AuthService
	fileService services.FileService
	session     *models.Session
	reader      *bufio.Reader
	out         io.Writer
	db          *sql.DB
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	db, err := client.InitDatabase(ctx, c.SessionDB)
	if err != nil {
		return nil, fmt.Errorf("error initializing session database: %w", err)
	}

	hc := &http.Client{Timeout: c.RequestTimeout}
	api := client.NewHTTPClient(c.ServerURL, hc)

	return &App{
		config:      c,
		authService: services.NewAuthService(api, session.NewSQLiteRepository(db), c.ServerURL),
		fileService: services.NewFileService(api, hc),
		reader:      bufio.NewReader(os.Stdin),
		out:         os.Stdout,
		db:          db,
	}, nil
}

// Run restores a remembered session and starts the REPL.
func (a *App) Run(ctx context.Context) {
	defer a.close()

	fmt.Fprintf(a.out, "filevault CLI, server %s (type 'help' for commands)\n", a.config.ServerURL)

	if err := a.authService.Ping(ctx); err != nil {
		a.printf("Warning: %v\n", err)
	}
	s, err := a.authService.Restore(ctx)
	if err != nil {
		a.printf("Could not restore session: %v\n", err)
	} else if s != nil {
		a.session = s
		a.printf("Signed in as %s\n", s.User.Email)
	}

	runREPL(ctx, a, a.status, a.reader)
}

func (a *App) close() {
	if a.db != nil {
		_ = a.db.Close()
	}
}

func (a *App) isLoggedIn() bool {
	return a.session != nil
}

func (a *App) token() string {
	if a.session == nil {
		return ""
	}
	return a.session.AccessToken
}

func (a *App) status() string {
	if a.session == nil {
		return ""
	}
	return "(" + a.session.User.Email + ")"
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
