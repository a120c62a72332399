package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"glycofy/internal/apiclient"
	"glycofy/internal/app"
	"glycofy/internal/config"
	"glycofy/internal/dates"
	"glycofy/internal/logging"
	"glycofy/internal/render"
	"glycofy/internal/shopping"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.NewFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := app.NewRuntime(ctx, cfg, logger, func(target string) {
		logger.Debug("redirecting to login", zap.String("target", target))
	})
	if err != nil {
		logger.Fatal("failed to initialize", zap.Error(err))
	}

	err = run(ctx, rt, os.Args[1], os.Args[2:])
	if closeErr := rt.Close(); closeErr != nil {
		logger.Warn("failed to close runtime", zap.Error(closeErr))
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		switch {
		case errors.Is(err, apiclient.ErrUnauthorized):
			fmt.Fprintf(os.Stderr, "Session expired. Run `glycofy login` (%s).\n", rt.Location.LastRedirect())
		case errors.Is(err, errUsage):
			printUsage()
		}
		os.Exit(1)
	}
}

var errUsage = errors.New("invalid usage")

func run(ctx context.Context, rt *app.Runtime, cmd string, args []string) error {
	a := rt.App
	switch cmd {
	case "login":
		fs := flag.NewFlagSet("login", flag.ExitOnError)
		email := fs.String("email", os.Getenv("GLYCOFY_EMAIL"), "Account email")
		password := fs.String("password", os.Getenv("GLYCOFY_PASSWORD"), "Account password")
		fs.Parse(args)
		if err := a.Login(ctx, *email, *password); err != nil {
			return err
		}
		fmt.Println("Logged in.")

	case "logout":
		if err := a.Logout(ctx); err != nil {
			return err
		}
		fmt.Println("Logged out.")

	case "week":
		fs := flag.NewFlagSet("week", flag.ExitOnError)
		html := fs.Bool("html", false, "Render the week as an HTML table")
		fs.Parse(args)
		view, err := a.LoadWeek(ctx, argOr(fs, 0, dates.FormatISO(time.Now())))
		if err != nil {
			return err
		}
		if *html {
			return render.Week(os.Stdout, view.Plans)
		}
		printWeek(view)

	case "grocery":
		fs := flag.NewFlagSet("grocery", flag.ExitOnError)
		format := fs.String("format", "txt", "Export format: txt, csv or xlsx")
		out := fs.String("o", "", "Write to this file instead of stdout (defaults to the export name for xlsx)")
		fs.Parse(args)

		f, err := shopping.ParseFormat(*format)
		if err != nil {
			return fmt.Errorf("%w: %v", errUsage, err)
		}
		if _, err := a.LoadWeek(ctx, argOr(fs, 0, dates.FormatISO(time.Now()))); err != nil {
			return err
		}
		file, err := a.ExportGrocery(f)
		if err != nil {
			return err
		}
		target := *out
		if target == "" && f == shopping.FormatXLSX {
			target = file.Filename
		}
		if target == "" {
			fmt.Println(string(file.Data))
			return nil
		}
		if err := os.WriteFile(target, file.Data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", target, err)
		}
		fmt.Printf("Saved %s\n", target)

	case "summary":
		fs := flag.NewFlagSet("summary", flag.ExitOnError)
		html := fs.Bool("html", false, "Render the summary as HTML")
		server := fs.Bool("server", false, "Also show the backend's own totals")
		fs.Parse(args)
		now := time.Now()
		from, to := argOr(fs, 0, dates.DaysAgo(now, 6)), argOr(fs, 1, dates.DaysAgo(now, 0))
		s, err := a.LoadSummary(ctx, from, to)
		if err != nil {
			return err
		}
		if *html {
			return render.Summary(os.Stdout, s)
		}
		fmt.Printf("Training %s → %s: %d kcal over %d activities\n\n", s.From, s.To, s.TotalKcal, s.ActivityCount)
		for _, row := range render.Rows(s) {
			fmt.Printf("%s  %6s kcal  %s\n", row[0], row[1], row[3])
		}
		for _, sl := range render.Donut(s) {
			fmt.Printf("  %-12s %6d kcal  %5.1f%%\n", sl.Label, sl.Kcal, sl.Percent)
		}
		if *server {
			rs, err := a.LoadServerSummary(ctx, from, to)
			if err != nil {
				return err
			}
			fmt.Printf("\nBackend: %d kcal over %d activities\n", rs.TotalTrainingKcal, rs.ActivityCount)
			for _, d := range rs.Days {
				if d.BySportText != "" {
					fmt.Printf("%s  %6d kcal  %s\n", d.Date, d.TrainingKcal, d.BySportText)
				}
			}
		}

	case "swap":
		if len(args) < 2 {
			return fmt.Errorf("%w: swap <date> <meal-type>", errUsage)
		}
		p, err := a.SwapMeal(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("New plan for %s (%d kcal)\n", p.Date, p.PlannedKcal())
		for _, m := range p.Meals {
			fmt.Printf("  %-9s %s (%d kcal)\n", m.MealType, m.Title, m.Kcal)
		}

	case "lock", "unlock":
		if len(args) < 1 {
			return fmt.Errorf("%w: %s <date>", errUsage, cmd)
		}
		res, err := a.LockDay(ctx, args[0], cmd == "lock")
		if err != nil {
			return err
		}
		fmt.Printf("%s locked: %t\n", res.Date, res.Locked)

	case "strava":
		fmt.Printf("Strava: %s\n", a.StravaStatus(ctx))

	case "sync":
		fs := flag.NewFlagSet("sync", flag.ExitOnError)
		replace := fs.Bool("replace", false, "Replace stored activities")
		fs.Parse(args)
		res, err := a.SyncStrava(ctx, *replace)
		if err != nil {
			return err
		}
		fmt.Printf("Inserted %d, updated %d activities (%d total)\n", res.Inserted, res.Updated, res.Total)

	case "profile":
		fs := flag.NewFlagSet("profile", flag.ExitOnError)
		in := app.ProfileInput{}
		fs.StringVar(&in.Name, "name", "", "Display name")
		fs.StringVar(&in.Timezone, "timezone", "", "IANA timezone")
		fs.StringVar(&in.DietPref, "diet", "", "Diet preference")
		fs.StringVar(&in.Goal, "goal", "", "Goal")
		fs.StringVar(&in.Height, "height", "", "Height (cm, or in with -imperial)")
		fs.StringVar(&in.Weight, "weight", "", "Weight (kg, or lb with -imperial)")
		fs.BoolVar(&in.Imperial, "imperial", false, "Height and weight are in inches and pounds")
		fs.Parse(args)

		var (
			p   app.ProfileView
			err error
		)
		if fs.NFlag() == 0 || (fs.NFlag() == 1 && in.Imperial) {
			p, err = a.Profile(ctx)
		} else {
			p, err = a.UpdateProfile(ctx, in)
		}
		if err != nil {
			return err
		}
		printProfile(p)

	case "metrics-cleanup":
		fs := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
		days := fs.Int("days", 30, "Keep records for the last N days")
		fs.Parse(args)
		affected, err := rt.Metrics.Cleanup(ctx, *days)
		if err != nil {
			return fmt.Errorf("cleanup failed: %w", err)
		}
		fmt.Printf("Successfully removed %d old metric records.\n", affected)

	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
	return nil
}

func argOr(fs *flag.FlagSet, i int, fallback string) string {
	if v := fs.Arg(i); v != "" {
		return v
	}
	return fallback
}

func printWeek(view app.WeekView) {
	fmt.Printf("Week of %s\n\n", view.Range.Dates[0])
	for _, p := range view.Plans {
		lock := ""
		if p.Locked {
			lock = " [locked]"
		}
		fmt.Printf("%s%s  planned %d kcal, training %d kcal\n", p.Date, lock, p.PlannedKcal(), p.Targets.TrainingKcal)
		for _, m := range p.Meals {
			fmt.Printf("  %-9s %s (%d kcal)\n", m.MealType, m.Title, m.Kcal)
		}
	}
	if view.Grocery != nil && view.Grocery.Len() > 0 {
		fmt.Println("\nGrocery list")
		fmt.Println(shopping.ToText(view.Grocery))
	}
}

func printProfile(p app.ProfileView) {
	fmt.Printf("Name:     %s <%s>\n", p.Name, p.Email)
	fmt.Printf("Timezone: %s\n", p.Timezone)
	fmt.Printf("Diet:     %s\n", p.DietPref)
	if p.Goal != "" {
		fmt.Printf("Goal:     %s\n", p.Goal)
	}
	fmt.Printf("Height:   %s cm (%s in)\n", p.HeightCm, p.HeightIn)
	fmt.Printf("Weight:   %s kg (%s lb)\n", p.WeightKg, p.WeightLb)
	if len(p.Roles) > 0 {
		fmt.Printf("Roles:    %s\n", strings.Join(p.Roles, ", "))
	}
}

func printUsage() {
	fmt.Println("Usage: glycofy <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  login -email E -password P      Sign in and remember the session")
	fmt.Println("  logout                          Sign out")
	fmt.Println("  week [-html] [date]             Show the week containing date (default today)")
	fmt.Println("  grocery [-format F] [-o file] [date]  Export the week's grocery list")
	fmt.Println("  summary [-html] [-server] [from] [to]  Training summary (default last 7 days)")
	fmt.Println("  swap <date> <meal-type>         Swap a meal")
	fmt.Println("  lock|unlock <date>              Lock or unlock a day's plan")
	fmt.Println("  strava                          Strava connection status")
	fmt.Println("  sync [-replace]                 Import activities from Strava")
	fmt.Println("  profile [flags]                 Show or update the profile")
	fmt.Println("  metrics-cleanup [-days N]       Remove old request metrics")
}
