package bootstrap

import (
	"context"
	"fmt"
	"net/http"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	authinadapter "santacall/internal/modules/auth/adapter/in"
	authoutadapter "santacall/internal/modules/auth/adapter/out"
	authservice "santacall/internal/modules/auth/service"
	childreninadapter "santacall/internal/modules/children/adapter/in"
	childrenoutadapter "santacall/internal/modules/children/adapter/out"
	childrenservice "santacall/internal/modules/children/service"
	profileinadapter "santacall/internal/modules/profile/adapter/in"
	profileoutadapter "santacall/internal/modules/profile/adapter/out"
	profileservice "santacall/internal/modules/profile/service"
	"santacall/internal/navigation"
	"santacall/internal/platform/clock"
	"santacall/internal/platform/config"
	"santacall/internal/platform/logging"
	"santacall/internal/platform/supabase"
	uiapp "santacall/internal/ui/app"
)

type App struct {
	AuthCLI     authinadapter.CLIHandler
	ProfileCLI  profileinadapter.CLIHandler
	ChildrenCLI childreninadapter.CLIHandler

	Log *zap.Logger

	holder   *authservice.Holder
	profiles *profileservice.Store
	children *childrenservice.Store
	router   *navigation.Router
	cache    *authoutadapter.SQLiteSessionCache
}

func New(cfg config.Config) (*App, error) {
	log, err := logging.New(cfg.LogLevel, cfg.LogPath)
	if err != nil {
		return nil, fmt.Errorf("new logger: %w", err)
	}

	clk := clock.SystemClock{}
	cache, err := authoutadapter.OpenSQLiteSessionCache(cfg.DBPath, clk)
	if err != nil {
		return nil, fmt.Errorf("open session cache: %w", err)
	}

	client, err := supabase.New(supabase.Options{
		URL:        cfg.BackendURL,
		AnonKey:    cfg.AnonKey,
		HTTPClient: &http.Client{Timeout: cfg.HTTPTimeout},
		Storage:    cache,
		Clock:      clk,
		Logger:     log.Named("supabase"),
	})
	if err != nil {
		_ = cache.Close()
		return nil, fmt.Errorf("new backend client: %w", err)
	}

	holder := authservice.NewHolder(authoutadapter.NewSupabaseGateway(client), log)

	profileTable := profileoutadapter.NewSupabaseProfileTable(client)
	profiles := profileservice.NewStore(profileTable, profileTable, log)

	childTable := childrenoutadapter.NewSupabaseChildTable(client)
	children := childrenservice.NewStore(childTable, childTable, log)

	return &App{
		AuthCLI:     authinadapter.NewCLIHandler(holder),
		ProfileCLI:  profileinadapter.NewCLIHandler(profiles),
		ChildrenCLI: childreninadapter.NewCLIHandler(children),
		Log:         log,
		holder:      holder,
		profiles:    profiles,
		children:    children,
		router:      navigation.NewRouter(holder, profiles, children, log),
		cache:       cache,
	}, nil
}

// Start restores the persisted session and attaches the auth listener.
func (a *App) Start(ctx context.Context) error {
	if err := a.holder.Start(ctx); err != nil {
		return fmt.Errorf("start session holder: %w", err)
	}
	return nil
}

func (a *App) Close() error {
	a.router.Stop()
	a.holder.Stop()
	_ = a.Log.Sync()
	return a.cache.Close()
}

// RunTUI starts the router and runs the interactive client until it quits.
func RunTUI(ctx context.Context, app *App) error {
	if err := app.Start(ctx); err != nil {
		return err
	}
	app.router.Start()

	ports := uiapp.Ports{Auth: app.holder, Profile: app.profiles, Children: app.children, Router: app.router}
	program := tea.NewProgram(uiapp.NewModel(ports), tea.WithAltScreen(), tea.WithContext(ctx))
	stop := uiapp.Watch(program.Send, ports)
	defer stop()

	_, err := program.Run()
	return err
}
