package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dmitrijs2005/codepulse/internal/client/client"
	"github.com/dmitrijs2005/codepulse/internal/client/config"
	"github.com/dmitrijs2005/codepulse/internal/client/models"
	"github.com/dmitrijs2005/codepulse/internal/client/services"
	"github.com/dmitrijs2005/codepulse/internal/client/session"
	"github.com/dmitrijs2005/codepulse/internal/filex"
	"github.com/dmitrijs2005/codepulse/internal/logging"
)

const dbFileName = "client.db"

type App struct {
	auth   services.AuthService
	blog   services.BlogService
	reader *bufio.Reader
	out    io.Writer
	log    logging.Logger
	db     *sql.DB

	mu   sync.Mutex
	user *models.User
}

// NewApp opens the local store under cfg.DataDir and wires the session
// cache into the API client.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	dir, err := filex.EnsureDir(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	db, err := client.InitDatabase(ctx, filepath.Join(dir, dbFileName))
	if err != nil {
		return nil, fmt.Errorf("init local store: %w", err)
	}

	cache := session.NewCache(db, log)
	api := client.NewHTTPClient(cfg.ServerBaseURL, cfg.RequestTimeout, cache)

	a := newApp(
		services.NewAuthService(api, cache),
		services.NewBlogService(api, cache),
		os.Stdin, os.Stdout, log,
	)
	a.db = db
	a.user = cache.User(ctx)
	cache.Subscribe(a.onSession)
	return a, nil
}

func newApp(auth services.AuthService, blog services.BlogService, in io.Reader, out io.Writer, log logging.Logger) *App {
	return &App{
		auth:   auth,
		blog:   blog,
		reader: bufio.NewReader(in),
		out:    out,
		log:    log.With("module", "cli"),
	}
}

// onSession keeps the prompt in step with the session cache.
func (a *App) onSession(u *models.User) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.user = u
}

func (a *App) currentUser() *models.User {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.user
}

func (a *App) isLoggedIn() bool {
	return a.currentUser() != nil
}

func (a *App) status() string {
	u := a.currentUser()
	if u == nil {
		return ""
	}
	if len(u.Roles) == 0 {
		return fmt.Sprintf("(%s)", u.Email)
	}
	return fmt.Sprintf("(%s %s)", u.Email, strings.Join(u.Roles, ","))
}

// Run blocks in the REPL until the user exits or input ends.
func (a *App) Run(ctx context.Context) error {
	defer func() {
		if a.db != nil {
			_ = a.db.Close()
		}
	}()

	fmt.Fprintln(a.out, "Welcome to CodePulse CLI (type 'help' for commands)")
	runREPL(ctx, a, a.status, a.reader)
	return nil
}
