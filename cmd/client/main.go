package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/CrwnG/DndProyect-sub001/internal/clients/arena"
	"github.com/CrwnG/DndProyect-sub001/internal/config"
	"github.com/CrwnG/DndProyect-sub001/internal/domain/combat"
	"github.com/CrwnG/DndProyect-sub001/internal/events"
	"github.com/CrwnG/DndProyect-sub001/internal/notify"
	"github.com/CrwnG/DndProyect-sub001/internal/repositories/combatlog"
	"github.com/CrwnG/DndProyect-sub001/internal/services/movement"
	"github.com/CrwnG/DndProyect-sub001/internal/services/presenter"
	"github.com/CrwnG/DndProyect-sub001/internal/state"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	} else {
		log.Println("Loaded .env file")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log.Printf("Arena server: %s", cfg.Arena.BaseURL)
	log.Printf("Playing %s in combat %s", cfg.Combat.LocalCombatantID, cfg.Combat.CombatID)

	bus := events.NewBus()

	// Keep Redis client for cleanup
	var redisClient *redis.Client

	// Combat log persistence: Redis when configured, in-memory otherwise
	logRepo := combatlog.NewInMemoryRepository()
	if cfg.Redis.Addr != "" {
		log.Printf("Connecting to Redis at: %s", cfg.Redis.Addr)
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if pingErr := redisClient.Ping(ctx).Err(); pingErr != nil {
			log.Printf("Failed to connect to Redis: %v", pingErr)
			log.Println("Falling back to in-memory combat log")
			_ = redisClient.Close()
			redisClient = nil
		} else {
			log.Println("Successfully connected to Redis")
			logRepo = combatlog.NewRedisRepository(&combatlog.RedisRepoConfig{
				Client: redisClient,
				TTL:    24 * time.Hour,
			})
		}
		cancel()
	}
	defer func() {
		if redisClient != nil {
			if closeErr := redisClient.Close(); closeErr != nil {
				log.Printf("Error closing Redis connection: %v", closeErr)
			}
		}
	}()

	store := state.NewStore(&state.StoreConfig{
		Bus:           bus,
		LogRepository: logRepo,
	})

	gateway, err := arena.New(&arena.Config{BaseURL: cfg.Arena.BaseURL})
	if err != nil {
		log.Fatalf("Failed to create arena client: %v", err)
	}

	pres := presenter.NewService(&presenter.ServiceConfig{
		Sink:           consoleSink{},
		FrameInterval:  cfg.Timing.DiceFrameInterval,
		TumbleDuration: cfg.Timing.DiceTumbleDuration,
		AutoHideDelay:  cfg.Timing.RollAutoHide,
	})

	mover := movement.NewService(&movement.ServiceConfig{
		Gateway:          gateway,
		State:            store,
		Bus:              bus,
		Presenter:        pres,
		MoveCellDuration: cfg.Timing.MoveCellDuration,
		ReactionPause:    cfg.Timing.ReactionPause,
		GatewayTimeout:   cfg.Timing.GatewayTimeout,
		ClickToRoll:      cfg.Combat.ClickToRoll,
	})

	attachConsolePrinters(bus)

	// Optional Discord relay: mirrors combat narration to a channel
	var dg *discordgo.Session
	if cfg.Discord.Token != "" {
		dg, err = discordgo.New("Bot " + cfg.Discord.Token)
		if err != nil {
			log.Fatalf("Failed to create Discord session: %v", err)
		}
		relay, relayErr := notify.NewDiscordRelay(&notify.DiscordRelayConfig{
			Session:   dg,
			ChannelID: cfg.Discord.ChannelID,
		})
		if relayErr != nil {
			log.Fatalf("Failed to create Discord relay: %v", relayErr)
		}
		relay.Attach(bus)
		defer relay.Detach()
		log.Printf("Relaying combat events to Discord channel %s", cfg.Discord.ChannelID)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// State stream: server-pushed deltas keep the store current for
	// changes this client did not cause
	if cfg.Arena.StreamURL != "" {
		stream, streamErr := arena.NewStateStream(&arena.StateStreamConfig{
			URL: cfg.Arena.StreamURL,
			Handler: func(snapshot *combat.StateSnapshot) {
				if store.CombatID() == "" && snapshot.CombatID != "" {
					store.Reset(snapshot.CombatID, cfg.Combat.LocalCombatantID, nil)
				}
				store.Merge(snapshot)
			},
		})
		if streamErr != nil {
			log.Fatalf("Failed to create state stream: %v", streamErr)
		}
		g.Go(func() error {
			err := stream.Run(ctx)
			if err == context.Canceled {
				return nil
			}
			return err
		})
		log.Printf("Subscribed to state stream at %s", cfg.Arena.StreamURL)
	} else {
		store.Reset(cfg.Combat.CombatID, cfg.Combat.LocalCombatantID, nil)
		log.Println("No ARENA_STREAM_URL set; state updates only via move responses")
	}

	g.Go(func() error {
		runInput(ctx, stop, store, mover, pres)
		return nil
	})

	fmt.Println("Combat client ready. Type 'help' for commands.")
	if err := g.Wait(); err != nil {
		log.Fatalf("Client exited with error: %v", err)
	}
	log.Println("Shutting down gracefully...")
}

// runInput drives the pipeline from stdin until ctx ends or the player
// quits
func runInput(ctx context.Context, quit func(), store *state.Store, mover movement.Service, pres presenter.Service) {
	scanner := bufio.NewScanner(os.Stdin)
	prompt := func() { fmt.Print("> ") }

	prompt()
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			prompt()
			continue
		}

		switch fields[0] {
		case "help":
			fmt.Println(`commands:
  arm            arm movement mode (clicks become move intents)
  move X Y       request a move to cell (X,Y)
  preview X Y    preview the path to (X,Y)
  click          click the dice surface (click-to-roll mode)
  reach          refresh reachable cells from the server
  state          print combatants
  log            print the combat log
  quit           exit`)

		case "arm":
			store.ArmMovement(true)
			fmt.Println("movement armed")

		case "move":
			target, ok := parseCell(fields)
			if !ok {
				fmt.Println("usage: move X Y")
				break
			}
			// The pipeline blocks through animation and any click-to-roll
			// wait; run it off the input loop so 'click' stays reachable.
			go func() {
				if err := mover.RequestMove(ctx, target); err != nil {
					fmt.Printf("move rejected: %v\n", err)
				}
			}()

		case "preview":
			target, ok := parseCell(fields)
			if !ok {
				fmt.Println("usage: preview X Y")
				break
			}
			mover.PreviewPath(target)
			if path := store.PathPreview(); len(path) > 0 {
				fmt.Printf("path: %v\n", path)
			}

		case "click":
			pres.Click()

		case "reach":
			if err := mover.RefreshReachable(ctx); err != nil {
				fmt.Printf("refresh failed: %v\n", err)
			} else {
				printReachable(store)
			}

		case "state":
			printState(store)

		case "log":
			printLog(store)

		case "quit", "exit":
			quit()
			return

		default:
			fmt.Printf("unknown command %q; type 'help'\n", fields[0])
		}

		prompt()
	}
}

func parseCell(fields []string) (combat.Position, bool) {
	if len(fields) != 3 {
		return combat.Position{}, false
	}
	x, errX := strconv.Atoi(fields[1])
	y, errY := strconv.Atoi(fields[2])
	if errX != nil || errY != nil {
		return combat.Position{}, false
	}
	return combat.Position{X: x, Y: y}, true
}
