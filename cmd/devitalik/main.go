package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"devitalik/internal/agent"
	"devitalik/internal/analytics"
	"devitalik/internal/cmdlog"
	"devitalik/internal/compose"
	"devitalik/internal/config"
	"devitalik/internal/discord"
	"devitalik/internal/github"
	"devitalik/internal/market"
	"devitalik/internal/metrics"
	"devitalik/internal/model"
	"devitalik/internal/scheduler"
	"devitalik/internal/scoring"
	"devitalik/internal/store/agentdb"
	"devitalik/internal/theme"
	"devitalik/internal/topics"
	"devitalik/internal/util"
	"devitalik/internal/xclient"
)

func main() {
	cmd := ""
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}
	switch cmd {
	case "init":
		cmdInit()
	case "run":
		cmdRun()
	case "score":
		cmdScore()
	case "schedule":
		cmdSchedule()
	case "monitor":
		cmdMonitor()
	default:
		printHelp()
	}
}

func printHelp() {
	theme.PrintBanner()
	fmt.Println("Usage: devitalik <command> [options]")
	fmt.Println("Commands:")
	fmt.Println("  init        Create a config file at ./devitalik.yaml")
	fmt.Println("  run         Run the agent loop")
	fmt.Println("  score       Rank a feed snapshot by engagement score")
	fmt.Println("  schedule    Show effective task weights per hour")
	fmt.Println("  monitor     Show hourly action analytics")
}

func cmdInit() {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	path := fs.String("path", "./devitalik.yaml", "path to write config")
	_ = fs.Parse(os.Args[2:])
	err := cmdlog.Run("init", func() error {
		return config.Save(*path, config.Default())
	})
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	abs, _ := filepath.Abs(*path)
	theme.PrintBanner()
	fmt.Println("Config written to:", abs)
}

func cmdRun() {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	cfgPath := fs.String("config", "./devitalik.yaml", "config path")
	_ = fs.Parse(os.Args[2:])
	err := cmdlog.Run("run", func() error {
		cfg, err := config.Load(*cfgPath)
		if err != nil {
			return err
		}
		db, err := agentdb.Open(cfg.Storage.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		deps := agent.Deps{
			Gen:    compose.NewGenerator(cfg.LLM),
			Market: marketSource(cfg),
			Dev:    devSource(cfg),
			DB:     db,
		}
		if cfg.Credentials.BearerToken != "" {
			read := xclient.NewHTTPClient(cfg.Credentials.BearerToken)
			userID, err := read.GetUserByUsername(ctx, cfg.Agent.Username)
			if err != nil {
				fmt.Println("warning: could not resolve user id:", err)
			}
			write := xclient.NewUserClient(read,
				cfg.Credentials.ConsumerKey, cfg.Credentials.ConsumerSecret,
				cfg.Credentials.AccessToken, cfg.Credentials.AccessSecret, userID)
			conn := xclient.NewConnector(read, write, userID)
			deps.Feed = conn
			deps.Twitter = conn
		} else {
			fmt.Println("warning: missing X_BEARER_TOKEN; twitter actions disabled")
		}
		if cfg.Credentials.DiscordToken != "" && cfg.Discord.ChannelID != "" {
			deps.Discord = discord.NewClient(cfg.Credentials.DiscordToken, cfg.Discord.ChannelID)
		}

		a := agent.New(cfg, deps)
		metrics.StartServer(cfg.Metrics.Addr, func() any { return a.StatusSnapshot() })
		theme.PrintBanner()
		if err := a.RunLoop(ctx); err != nil && err != context.Canceled {
			return err
		}
		return nil
	})
	if err != nil {
		os.Exit(1)
	}
}

func marketSource(cfg config.Config) agent.MarketSource {
	if len(cfg.Market.Tokens) == 0 {
		return nil
	}
	return market.NewClient()
}

func devSource(cfg config.Config) agent.DevSource {
	if len(cfg.GitHub.Repos) == 0 {
		return nil
	}
	return github.NewClient(cfg.Credentials.GitHubToken)
}

func cmdScore() {
	fs := flag.NewFlagSet("score", flag.ExitOnError)
	cfgPath := fs.String("config", "./devitalik.yaml", "config path")
	file := fs.String("file", "", "JSON file with a post array; fetches the timeline when empty")
	limit := fs.Int("limit", 50, "timeline fetch limit")
	_ = fs.Parse(os.Args[2:])
	err := cmdlog.Run("score", func() error {
		cfg, err := config.Load(*cfgPath)
		if err != nil {
			return err
		}
		var posts []model.Post
		if *file != "" {
			b, err := os.ReadFile(*file)
			if err != nil {
				return err
			}
			if err := json.Unmarshal(b, &posts); err != nil {
				return err
			}
		} else {
			read := xclient.NewHTTPClient(cfg.Credentials.BearerToken)
			ctx := context.Background()
			userID, err := read.GetUserByUsername(ctx, cfg.Agent.Username)
			if err != nil {
				return err
			}
			posts, err = read.GetTimeline(ctx, userID, *limit)
			if err != nil {
				return err
			}
		}
		m := topics.NewMatcher(cfg.Interests.Keywords)
		ranked := scoring.RankFeed(posts, m, time.Now().UTC())
		for _, sp := range ranked {
			fmt.Printf("%8.2f  sent=%+.2f  topics=%v  %s\n",
				sp.Score, sp.Sentiment, sp.Topics, util.TrimRunes(sp.Post.Text, 60))
		}
		return nil
	})
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func cmdSchedule() {
	fs := flag.NewFlagSet("schedule", flag.ExitOnError)
	cfgPath := fs.String("config", "./devitalik.yaml", "config path")
	_ = fs.Parse(os.Args[2:])
	err := cmdlog.Run("schedule", func() error {
		cfg, err := config.Load(*cfgPath)
		if err != nil {
			return err
		}
		mult := scheduler.Multipliers{
			TweetNight:    cfg.Multipliers.TweetNight,
			EngagementDay: cfg.Multipliers.EngagementDay,
		}
		fmt.Printf("%-5s", "hour")
		for _, t := range cfg.Tasks {
			fmt.Printf("  %-18s", t.Name)
		}
		fmt.Println()
		for hour := 0; hour < 24; hour++ {
			fmt.Printf("%-5d", hour)
			for _, t := range cfg.Tasks {
				w := 0.0
				if t.Enabled {
					w = t.Weight * scheduler.TimeMultiplier(t.Name, hour, mult)
				}
				fmt.Printf("  %-18.2f", w)
			}
			fmt.Println()
		}
		return nil
	})
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func cmdMonitor() {
	fs := flag.NewFlagSet("monitor", flag.ExitOnError)
	cfgPath := fs.String("config", "./devitalik.yaml", "config path")
	hours := fs.Int("hours", 24, "lookback window in hours")
	_ = fs.Parse(os.Args[2:])
	err := cmdlog.Run("monitor", func() error {
		cfg, err := config.Load(*cfgPath)
		if err != nil {
			return err
		}
		db, err := agentdb.Open(cfg.Storage.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()
		now := time.Now().UTC()
		actions, err := db.LoadActionsRange(context.Background(), now.Add(-time.Duration(*hours)*time.Hour), now)
		if err != nil {
			return err
		}
		b := analytics.HourlyActions(actions)
		for _, k := range analytics.SortedBucketKeys(b) {
			fmt.Printf("%s -> %v\n", k.Format("15:00"), b[k])
		}
		return nil
	})
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}
