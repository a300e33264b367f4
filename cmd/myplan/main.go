package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/server"
	planmcp "github.com/meltforce/myplan/internal/mcp"
	"github.com/meltforce/myplan/internal/models"
	"github.com/meltforce/myplan/internal/myplan"
	"github.com/meltforce/myplan/internal/planapi"
	"github.com/meltforce/myplan/internal/profile"
)

// Version is set at build time via -ldflags.
var Version = "dev"

const usage = `Usage: myplan -server <URL> [flags] [command]

Commands:
  show                 show the selected day (default)
  day <n>              select day n
  variant <primary|alternate>
  today                make the selected day the current day of the plan
  done                 record the selected workout as completed
  rate <1-5> <day> <workout-id>
  harder | easier      change the plan difficulty
  play                 print the video link of the selected workout
  mcp                  serve the plan as an MCP server on stdio
`

func main() {
	serverURL := flag.String("server", os.Getenv("MYPLAN_SERVER"), "MyPlan server URL (e.g. https://myplan.tail1234.ts.net)")
	apiKey := flag.String("api-key", os.Getenv("MYPLAN_API_KEY"), "API key for write requests")
	stateDir := flag.String("state", "", "state directory (default ~/.myplan)")
	verbose := flag.Bool("v", false, "debug logging")
	version := flag.Bool("version", false, "print version and exit")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *version {
		fmt.Println("myplan", Version)
		return
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	// stdout belongs to the MCP protocol in mcp mode, so logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if *serverURL == "" {
		fmt.Fprintf(os.Stderr, "Error: -server is required\n\n")
		flag.Usage()
		os.Exit(1)
	}
	*serverURL = strings.TrimRight(*serverURL, "/")

	if *stateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Error("failed to get home directory", "error", err)
			os.Exit(1)
		}
		*stateDir = filepath.Join(home, ".myplan")
	}
	store, err := profile.OpenStore(*stateDir)
	if err != nil {
		log.Error("failed to open state database", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx := context.Background()
	client := planapi.NewHTTPClient(*serverURL, *apiKey)

	prof, err := loadProfile(ctx, client, store, *serverURL)
	if err != nil {
		log.Error("failed to resolve user", "error", err)
		os.Exit(1)
	}

	args := flag.Args()
	if len(args) > 0 && args[0] == "mcp" {
		reg := myplan.NewRegistry(client, fixedProfile(prof), log, myplan.Options{})
		if err := server.ServeStdio(planmcp.New(reg, client, Version, log)); err != nil {
			log.Error("mcp server failed", "error", err)
			os.Exit(1)
		}
		return
	}

	screen := &myplan.Screen{}
	sess := myplan.NewSession(client, screen, prof, log, myplan.Options{})
	if err := sess.Reload(ctx); err != nil {
		printScreen(os.Stdout, screen.State())
		os.Exit(1)
	}
	restoreLastView(ctx, sess, store, *serverURL)

	if err := run(ctx, sess, args); err != nil {
		printScreen(os.Stdout, screen.State())
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	printScreen(os.Stdout, screen.State())

	if snap := sess.Snapshot(); snap.Loaded() {
		sel := sess.Selection()
		err := store.SaveLastView(*serverURL, profile.LastView{
			PlanID:  snap.Plan.PlanID,
			Day:     sel.SelectedDay,
			Variant: sel.Variant,
		})
		if err != nil {
			log.Warn("failed to save last view", "error", err)
		}
	}
}

// loadProfile asks the server who we are and falls back to the remembered
// profile when it cannot be reached.
func loadProfile(ctx context.Context, client *planapi.HTTPClient, store *profile.Store, serverURL string) (models.Profile, error) {
	me, err := client.GetMe(ctx)
	if err == nil {
		p := models.Profile{UserID: me.UserID, Name: me.DisplayName, QuizCompleted: me.QuizCompleted}
		if saveErr := store.SaveProfile(serverURL, p); saveErr != nil {
			return p, saveErr
		}
		return p, nil
	}

	p, ok, loadErr := store.LoadProfile(serverURL)
	if loadErr != nil {
		return models.Profile{}, loadErr
	}
	if !ok {
		return models.Profile{}, fmt.Errorf("fetching profile: %w", err)
	}
	return p, nil
}

// restoreLastView reselects the day and variant from the previous run while
// the plan is unchanged.
func restoreLastView(ctx context.Context, sess *myplan.Session, store *profile.Store, serverURL string) {
	v, ok, err := store.LoadLastView(serverURL)
	if err != nil || !ok {
		return
	}
	if snap := sess.Snapshot(); !snap.Loaded() || snap.Plan.PlanID != v.PlanID {
		return
	}
	if v.Day != sess.Selection().SelectedDay {
		sess.Select(ctx, v.Day)
	}
	sess.SetVariant(v.Variant)
}

func run(ctx context.Context, sess *myplan.Session, args []string) error {
	if len(args) == 0 {
		return nil
	}
	switch args[0] {
	case "show":
		return nil
	case "day":
		n, err := intArg(args, 1, "day")
		if err != nil {
			return err
		}
		sess.Select(ctx, n)
		return nil
	case "variant":
		if len(args) < 2 {
			return errors.New("variant: primary or alternate required")
		}
		v, ok := models.ParseVariant(args[1])
		if !ok {
			return fmt.Errorf("variant: unknown variant %q", args[1])
		}
		sess.SetVariant(v)
		return nil
	case "today":
		return sess.ChangeDate(ctx)
	case "done":
		return sess.SaveProgress(ctx)
	case "rate":
		rating, err := intArg(args, 1, "rating")
		if err != nil {
			return err
		}
		day, err := intArg(args, 2, "day")
		if err != nil {
			return err
		}
		if len(args) < 4 {
			return errors.New("rate: workout id required")
		}
		action, ok := sess.Rate(ctx, rating, day, args[3])
		if !ok {
			return errors.New("rating was not accepted")
		}
		fmt.Printf("Rated %d. Suggestion: %s\n\n", rating, action)
		return nil
	case "harder":
		return sess.ChangeDifficulty(ctx, models.RateActionIncrease)
	case "easier":
		return sess.ChangeDifficulty(ctx, models.RateActionDecrease)
	case "play":
		sess.PlayVideo(nil, nil)
		return nil
	}
	return fmt.Errorf("unknown command %q", args[0])
}

func intArg(args []string, i int, name string) (int, error) {
	if len(args) <= i {
		return 0, fmt.Errorf("%s: missing argument", name)
	}
	n, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return n, nil
}

// fixedProfile serves the one user the terminal client runs as.
type fixedProfile models.Profile

func (p fixedProfile) GetProfile(context.Context, int) (models.Profile, error) {
	return models.Profile(p), nil
}
