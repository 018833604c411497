// Command reindeermaze serves the reindeer maze solver.
//
// It supports three commands:
//  1. "serve" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "solve" – solves one maze file or stored maze and prints the result
//
// Flags control host/port, config directory, debug logging, history size,
// and optional ngrok tunneling for easy external access during development.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/mcp-training/reindeermaze/api"
	"github.com/wricardo/mcp-training/reindeermaze/game/config"
	"github.com/wricardo/mcp-training/reindeermaze/game/engine"
	"github.com/wricardo/mcp-training/reindeermaze/game/maze"
	"github.com/wricardo/mcp-training/reindeermaze/game/service"
	"github.com/wricardo/mcp-training/reindeermaze/transport/mcp"
	"github.com/wricardo/mcp-training/reindeermaze/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Reindeer Maze Solver"
)

var log = logrus.New()

// options are the resolved command line settings shared by all commands
type options struct {
	host         string
	port         int
	configDir    string
	defaultMaze  string
	historySize  int
	ngrokEnabled bool
	ngrokAuth    string
	ngrokDomain  string
}

func (o options) addr() string {
	return fmt.Sprintf("%s:%d", o.host, o.port)
}

func optionsFrom(cmd *cli.Command) options {
	return options{
		host:         cmd.String("host"),
		port:         cmd.Int("port"),
		configDir:    cmd.String("config-dir"),
		defaultMaze:  cmd.String("default-maze"),
		historySize:  cmd.Int("history-size"),
		ngrokEnabled: cmd.Bool("ngrok"),
		ngrokAuth:    cmd.String("ngrok-auth"),
		ngrokDomain:  cmd.String("ngrok-domain"),
	}
}

// newApp builds the command tree. Root flags are inherited by every command.
func newApp() *cli.Command {
	return &cli.Command{
		Name:    "reindeermaze",
		Usage:   "Lowest-score paths through reindeer mazes",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "host",
				Value:   "localhost",
				Usage:   "HTTP server host",
				Sources: cli.EnvVars("HOST"),
			},
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "HTTP server port",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "Directory containing maze definitions",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.StringFlag{
				Name:    "default-maze",
				Usage:   "Maze solved when no name is given (default: small, else the first definition)",
				Sources: cli.EnvVars("DEFAULT_MAZE"),
			},
			&cli.IntFlag{
				Name:  "history-size",
				Value: service.DefaultHistorySize,
				Usage: "Number of solutions kept in memory",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
			&cli.BoolFlag{
				Name:    "ngrok",
				Usage:   "Enable ngrok tunnel",
				Sources: cli.EnvVars("NGROK_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "ngrok-auth",
				Usage:   "Ngrok auth token",
				Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "ngrok-domain",
				Usage:   "Custom ngrok domain (optional)",
				Sources: cli.EnvVars("NGROK_DOMAIN"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			setupLogging(cmd.Bool("debug"))
			return ctx, nil
		},
		Action: runServe,
		Commands: []*cli.Command{
			{
				Name:    "serve",
				Aliases: []string{"server", "http"},
				Usage:   "Run HTTP server with API, WebSocket, and MCP endpoint",
				Action:  runServe,
			},
			{
				Name:    "mcp",
				Aliases: []string{"stdio-mcp", "mcp-stdio"},
				Usage:   "Run MCP stdio server with internal HTTP server",
				Action:  runMCP,
			},
			{
				Name:      "solve",
				Usage:     "Solve a maze file or stored maze and print the result",
				ArgsUsage: "FILE|NAME",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "facing", Usage: "Starting heading (north, east, south, west)"},
					&cli.IntFlag{Name: "step-cost", Usage: "Cost of one forward step"},
					&cli.IntFlag{Name: "turn-cost", Usage: "Cost of one quarter turn"},
					&cli.BoolFlag{Name: "render", Usage: "Print the grid with optimal cells marked O"},
				},
				Action: runSolve,
			},
		},
	}
}

// setupLogging points every package at one logger
func setupLogging(debug bool) {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if debug {
		log.SetLevel(logrus.DebugLevel)
		log.SetReportCaller(true)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}

	service.SetLogger(log)
	api.SetLogger(log)
	websocket.SetLogger(log)
}

// main loads .env, then runs the selected command.
func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.WithError(err).Warn("Error loading .env file")
		}
	} else {
		log.Info("Loaded environment variables from .env file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

// initializeServices wires the config manager and the solver service.
func initializeServices(opts options) (service.SolverService, *config.Manager, error) {
	configManager, err := config.NewManager(opts.configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	if opts.defaultMaze != "" {
		if err := configManager.SetDefault(opts.defaultMaze); err != nil {
			return nil, nil, fmt.Errorf("failed to set default maze: %w", err)
		}
	}

	return service.NewSolverService(configManager, opts.historySize), configManager, nil
}

// cacheRefresher drops cached maze definitions
type cacheRefresher interface {
	RefreshCache() error
}

// reloadOnSignal refreshes the definition cache on every signal until ctx ends
func reloadOnSignal(ctx context.Context, signals <-chan os.Signal, configs cacheRefresher) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-signals:
			if err := configs.RefreshCache(); err != nil {
				log.WithError(err).Warn("Failed to reload maze definitions")
				continue
			}
			log.WithField("signal", sig.String()).Info("Reloaded maze definitions")
		}
	}
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	opts := optionsFrom(cmd)
	log.Infof("Starting %s v%s (mode: serve)", AppName, Version)

	solver, configManager, err := initializeServices(opts)
	if err != nil {
		return err
	}

	hangup := make(chan os.Signal, 1)
	signal.Notify(hangup, syscall.SIGHUP)
	defer signal.Stop(hangup)
	go reloadOnSignal(ctx, hangup, configManager)

	return runHTTPServer(ctx, solver, opts)
}

// newMainRouter mounts the REST API at root and the MCP proxy at /mcp
func newMainRouter(apiServer http.Handler, mcpClient *mcp.Client) *http.ServeMux {
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)

	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})

	return mainRouter
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled, it also provisions a public tunnel. It returns once ctx is cancelled.
func runHTTPServer(ctx context.Context, solver service.SolverService, opts options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	hub := websocket.NewHub()
	go hub.Run(ctx)

	apiServer := api.NewServer(solver, hub)

	addr := opts.addr()
	mcpClient := mcp.NewClient(fmt.Sprintf("http://%s", addr))
	mainRouter := newMainRouter(apiServer, mcpClient)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	serveErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Infof("HTTP server listening on %s", addr)
		log.Infof("REST API: http://%s/api", addr)
		log.Infof("WebSocket: ws://%s/ws?maze=<maze_id>", addr)
		log.Infof("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("HTTP server failed: %w", err)
			cancel()
		}
	}()

	if opts.ngrokEnabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrok(ctx, opts, mainRouter)
		}()
	}

	<-ctx.Done()
	log.Info("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("HTTP server shutdown error")
	}

	wg.Wait()
	log.Info("Server stopped")

	select {
	case err := <-serveErr:
		return err
	default:
		return nil
	}
}

// runNgrok serves handler through an ngrok tunnel until ctx is cancelled
func runNgrok(ctx context.Context, opts options, handler http.Handler) {
	if opts.ngrokAuth == "" {
		log.Warn("Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		return
	}

	log.Info("Starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if opts.ngrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(opts.ngrokDomain))
		log.Infof("Using custom ngrok domain: %s", opts.ngrokDomain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx,
		tunnel,
		ngrok.WithAuthtoken(opts.ngrokAuth),
	)
	if err != nil {
		log.WithError(err).Error("Failed to start ngrok tunnel")
		return
	}
	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.WithError(err).Warn("Failed to close ngrok tunnel")
		}
	}()

	ngrokURL := tun.URL()
	log.Infof("Ngrok tunnel established: %s", ngrokURL)
	log.Infof("  REST API (ngrok): %s/api", ngrokURL)
	log.Infof("  WebSocket (ngrok): %s/ws?maze=<maze_id>", ngrokURL)
	log.Infof("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		log.WithError(err).Error("Ngrok server error")
	}
	log.Info("Ngrok tunnel closed")
}

// runMCP runs an MCP stdio server.
// It tries to reuse an external API at the configured address; if unavailable, it
// starts a minimal internal HTTP API bound to a random loopback port and targets that.
func runMCP(ctx context.Context, cmd *cli.Command) error {
	opts := optionsFrom(cmd)
	log.Infof("Starting %s v%s (mode: mcp)", AppName, Version)

	externalURL := fmt.Sprintf("http://%s", opts.addr())
	log.Infof("Checking for external API server at %s...", externalURL)

	baseURL := externalURL
	if !apiAvailable(externalURL) {
		log.Info("No external API server found, starting internal HTTP server")

		solver, _, err := initializeServices(opts)
		if err != nil {
			return err
		}

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		hub := websocket.NewHub()
		go hub.Run(ctx)

		httpServer := &http.Server{Handler: api.NewServer(solver, hub)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Error("Internal HTTP server error")
			}
		}()
		defer httpServer.Close()

		baseURL = fmt.Sprintf("http://%s", listener.Addr().String())
		log.Infof("Internal HTTP server on %s", baseURL)
	} else {
		log.Infof("External API server found at %s, using it for MCP", externalURL)
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Info("MCP stdio server ready")

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

// apiAvailable reports whether a solver API answers at baseURL
func apiAvailable(baseURL string) bool {
	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(baseURL + "/api")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < 500
}

// solveFlags are the overrides accepted by the solve command
type solveFlags struct {
	facing   string
	stepCost int
	turnCost int
	render   bool
}

func runSolve(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return cli.Exit("solve takes exactly one FILE or NAME argument", 2)
	}

	cfg, err := loadMazeArg(cmd.Args().First(), cmd.String("config-dir"))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	flags := solveFlags{
		facing:   cmd.String("facing"),
		stepCost: cmd.Int("step-cost"),
		turnCost: cmd.Int("turn-cost"),
		render:   cmd.Bool("render"),
	}
	if err := solveConfig(os.Stdout, cfg, flags); err != nil {
		return cli.Exit(err.Error(), 1)
	}
	return nil
}

// loadMazeArg reads arg as a maze file when it exists on disk, otherwise as
// the id of a definition in configDir
func loadMazeArg(arg, configDir string) (*engine.MazeConfig, error) {
	if info, err := os.Stat(arg); err == nil && !info.IsDir() {
		if strings.EqualFold(filepath.Ext(arg), ".json") {
			return engine.LoadMazeConfig(arg)
		}

		f, err := os.Open(arg)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		m, err := maze.Read(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(arg), err)
		}
		name := strings.TrimSuffix(filepath.Base(arg), filepath.Ext(arg))
		return &engine.MazeConfig{Name: name, Layout: m.Layout()}, nil
	}

	manager, err := config.NewManager(configDir)
	if err != nil {
		return nil, err
	}
	return manager.LoadConfig(arg)
}

// solveConfig solves cfg with flag overrides and prints the outcome.
// An unreachable end is reported as engine.ErrNoPath after "no path" is printed.
func solveConfig(w io.Writer, cfg *engine.MazeConfig, flags solveFlags) error {
	facing, err := cfg.Direction()
	if err != nil {
		return err
	}
	if flags.facing != "" {
		if facing, err = maze.ParseDirection(flags.facing); err != nil {
			return err
		}
	}

	costs := cfg.Costs()
	if flags.stepCost != 0 {
		costs.Step = flags.stepCost
	}
	if flags.turnCost != 0 {
		costs.Turn = flags.turnCost
	}

	m, err := cfg.Build()
	if err != nil {
		return err
	}
	eng, err := engine.NewEngine(m, costs)
	if err != nil {
		return err
	}

	sol, err := eng.Solve(facing)
	if errors.Is(err, engine.ErrNoPath) {
		fmt.Fprintf(w, "%s: no path\n", cfg.Name)
		return err
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s: min cost %d, %d cells on optimal paths\n", cfg.Name, sol.Cost, sol.CellCount())
	if flags.render {
		fmt.Fprint(w, m.Render(sol.Cells))
	}
	return nil
}
