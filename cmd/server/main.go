package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-print"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/bookmarkd/bookmarkd/auth"
	"github.com/bookmarkd/bookmarkd/bookmarks"
	"github.com/bookmarkd/bookmarkd/config"
)

type App struct {
	cfg      *config.Config
	bunDB    *bun.DB
	repo     auth.RepositoryManager
	store    bookmarks.Store
	auther   *auth.Auther
	httpAuth *auth.RouteAuthenticator
	srv      *fiber.App
	logger   *glog.BaseLogger
}

func (a *App) GetLogger(name string) glog.Logger {
	return a.logger.GetLogger(name)
}

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("bookmarkd"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	cfg, err := config.Load()
	if err != nil {
		lgr.Fatal("invalid configuration", "error", err)
	}

	app := &App{
		cfg:    cfg,
		logger: lgr,
	}

	if cfg.Debug {
		fmt.Println("============")
		fmt.Println(print.MaybeHighlightJSON(cfg))
		fmt.Println("============")
	}

	ctx := context.Background()

	if err := WithPersistence(ctx, app); err != nil {
		lgr.Fatal("persistence setup failed", "error", err)
	}

	if err := WithAuth(app); err != nil {
		lgr.Fatal("auth setup failed", "error", err)
	}

	WithHTTPServer(app)

	go func() {
		if err := app.srv.Listen(cfg.ServerAddress); err != nil {
			lgr.Fatal("server error", "error", err)
		}
	}()

	lgr.Info("server listening", "address", cfg.ServerAddress)

	WaitExitSignal()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.srv.ShutdownWithContext(shutdownCtx); err != nil {
		lgr.Error("server shutdown error", "error", err)
	}

	if err := app.bunDB.Close(); err != nil {
		lgr.Error("database close error", "error", err)
	}
}

func WithPersistence(ctx context.Context, app *App) error {
	sqldb, err := sql.Open(sqliteshim.ShimName, app.cfg.DatabaseDSN)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to open database")
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	for _, model := range []any{
		(*auth.User)(nil),
		(*bookmarks.Bookmark)(nil),
	} {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to create schema")
		}
	}

	app.bunDB = db
	app.repo = auth.NewRepositoryManager(db)
	app.repo.MustValidate()
	app.store = bookmarks.NewStore(db)

	return nil
}

func WithAuth(app *App) error {
	users := app.repo.Users()

	provider := auth.NewUserProvider(users).
		WithLogger(app.GetLogger("auth.provider"))

	app.auther = auth.NewAuthenticator(provider, provider, app.cfg).
		WithLogger(app.GetLogger("auth"))

	httpAuth, err := auth.NewHTTPAuthenticator(app.auther, app.auther.TokenService(), users, app.cfg)
	if err != nil {
		return err
	}

	app.httpAuth = httpAuth.WithLogger(app.GetLogger("auth.http"))

	return nil
}

func WithHTTPServer(app *App) {
	srv := fiber.New(fiber.Config{
		AppName: "bookmarkd",
	})

	authController := auth.NewAuthController(app.auther).
		WithLogger(app.GetLogger("auth.controller"))
	authController.Debug = app.cfg.Debug
	auth.RegisterAuthRoutes(srv, authController)

	protected := app.httpAuth.ProtectedRoute(app.httpAuth.MakeClientRouteAuthErrorHandler(false))

	profileController := auth.NewProfileController(app.repo.Users()).
		WithLogger(app.GetLogger("profile.controller"))
	auth.RegisterProfileRoutes(srv, protected, profileController)

	bookmarkController := bookmarks.NewController(app.store).
		WithLogger(app.GetLogger("bookmarks.controller"))
	bookmarks.RegisterBookmarkRoutes(srv, protected, bookmarkController)

	app.srv = srv
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
