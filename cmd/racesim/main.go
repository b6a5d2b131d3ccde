// Command racesim runs a race scenario to completion from the command
// line: load rules/board/roster from an HCL file (or fall back to a
// built-in default), seed the dice, drive the engine's turn loop, and
// print final standings. It deliberately has no interactive prompt
// surface — see DESIGN.md for why github.com/chzyer/readline isn't
// wired in here.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/muesli/termenv"

	"github.com/lox/racesim/internal/engine"
	"github.com/lox/racesim/internal/engine/abilities"
	"github.com/lox/racesim/internal/engine/rng"
	"github.com/lox/racesim/internal/railconfig"
	"github.com/lox/racesim/internal/spectator"
	"github.com/lox/racesim/internal/tui"
	"github.com/lox/racesim/sdk/agent"
)

type CLI struct {
	Config        string `short:"c" help:"HCL race config file (rules/board/roster)." default:"race.hcl"`
	LogLevel      string `help:"Set the log level." enum:"debug,info,warn,error" default:"info"`
	MaxTurns      int    `help:"Stop after this many turns even if no racer has finished (0 = unbounded)." default:"500"`
	Seed          *int64 `help:"Seed for the dice source; defaults to the current time."`
	TUI           bool   `help:"Show a live bubbletea spectator view instead of log output."`
	SpectateAddr  string `help:"If set, serve a websocket spectator feed at this address (e.g. :8080)."`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli)

	level, err := log.ParseLevel(cli.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "racesim: invalid log level %q: %v\n", cli.LogLevel, err)
		ctx.Exit(1)
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "racesim",
		TimeFormat:      "15:04:05",
		Level:           level,
	})
	logger.SetColorProfile(termenv.TrueColor)

	cfg, err := railconfig.Load(cli.Config)
	if err != nil {
		logger.Fatal("failed to load race config", "error", err)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid race config", "error", err)
	}

	seed := time.Now().UnixNano()
	if cli.Seed != nil {
		seed = *cli.Seed
	}

	board := engine.NewBoard(cfg.Board.Length, nil)
	registry := engine.NewAbilityRegistry()
	abilities.Register(registry)
	eng, err := engine.NewEngine(cfg.Roster(), board, cfg.EngineRules(), rng.NewSeeded(seed), nil, agent.Baseline{}, registry, logger)
	if err != nil {
		logger.Fatal("failed to construct engine", "error", err)
	}

	var hooks []func(*engine.Engine, engine.ScheduledEvent)

	var broadcaster *spectator.Broadcaster
	if cli.SpectateAddr != "" {
		broadcaster = spectator.NewBroadcaster()
		hooks = append(hooks, broadcaster.Hook())
		go serveSpectators(cli.SpectateAddr, broadcaster, logger)
	}

	var feed *tui.Feed
	var program *tea.Program
	if cli.TUI {
		feed = tui.NewFeed(256)
		feed.Attach(eng)
		hooks = append(hooks, eng.OnEventProcessed)
		program = tea.NewProgram(tui.NewModel(feed.Chan()), tea.WithAltScreen())
	}

	if len(hooks) > 0 {
		eng.OnEventProcessed = func(e *engine.Engine, se engine.ScheduledEvent) {
			for _, h := range hooks {
				if h != nil {
					h(e, se)
				}
			}
		}
	}

	logger.Info("race starting", "seed", seed, "racers", len(cfg.Racers), "board_length", cfg.Board.Length)

	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		eng.Run(cli.MaxTurns)
		if feed != nil {
			feed.Close()
		}
	}()

	if program != nil {
		if _, err := program.Run(); err != nil {
			logger.Error("tui exited with error", "error", err)
		}
	}
	<-runDone

	if eng.RaceActive {
		logger.Warn("stopped without a finish", "max_turns", cli.MaxTurns)
		ctx.Exit(1)
	}

	for _, s := range eng.Standings() {
		switch {
		case s.Eliminated:
			fmt.Printf("%-20s eliminated\n", s.Name)
		case s.Rank > 0:
			fmt.Printf("%-20s rank %d\n", s.Name, s.Rank)
		default:
			fmt.Printf("%-20s unranked\n", s.Name)
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// serveSpectators runs a minimal websocket endpoint for external
// dashboards, fanning every broadcast frame out through b.
func serveSpectators(addr string, b *spectator.Broadcaster, logger *log.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		wsConn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("spectator upgrade failed", "error", err)
			return
		}
		conn := spectator.NewConn(r.Context(), wsConn, logger)
		b.Add(conn)
		defer b.Remove(conn)
		_ = conn.Run(context.Background())
	})
	logger.Info("spectator feed listening", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("spectator server stopped", "error", err)
	}
}
