// cmd/feedd — Simulated signal feed daemon.
//
// Runs the tick scheduler over a synthetic random-walk price feed,
// serves live updates to websocket clients, and delivers generated
// signals to the configured notification channels.
//
// Config (env vars):
//
//	FEED_SYMBOL         — instrument label            (default: "SIM")
//	FEED_BASE_PRICE     — walk anchor price           (default: "100")
//	TICK_INTERVAL_MS    — scheduler tick interval     (default: "5000")
//	SIGNAL_EVERY_TICKS  — generator cadence           (default: "6")
//	RAND_SEED           — fixed seed, 0 = wall clock  (default: "0")
//	GATEWAY_ADDR        — websocket listen address    (default: ":8080")
//	METRICS_ADDR        — metrics listen address      (default: ":9090")
//	TELEGRAM_BOT_TOKEN / TELEGRAM_CHAT_ID — optional Telegram delivery
//	SIGNAL_WEBHOOK_URL  — optional webhook delivery
//	REDIS_ADDR          — optional PubSub mirror of the feed
//	SIGNAL_DB_PATH      — optional SQLite signal journal
package main

import (
	"context"
	"log"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"signalbotv1/config"
	"signalbotv1/internal/bus"
	"signalbotv1/internal/feed"
	"signalbotv1/internal/gateway"
	"signalbotv1/internal/logger"
	"signalbotv1/internal/metrics"
	"signalbotv1/internal/model"
	"signalbotv1/internal/notification"
	"signalbotv1/internal/scheduler"
	redisstore "signalbotv1/internal/store/redis"
	sqlitestore "signalbotv1/internal/store/sqlite"
	"signalbotv1/internal/strategy"
)

func main() {
	cfg := config.Load()
	slogger := logger.Init("feedd", logger.ParseLevel(cfg.LogLevel))
	slogger.Info("starting", slog.String("symbol", cfg.Symbol), slog.Duration("interval", cfg.TickInterval))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- Metrics & health ----
	prom := metrics.NewMetrics()
	health := metrics.NewHealthStatus()
	metricsSrv := metrics.NewServer(cfg.MetricsAddr, health)
	metricsSrv.Start()

	// ---- Randomness: one seed, two independent streams ----
	seed := cfg.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	walker := feed.NewWalker(rand.New(rand.NewSource(seed)))
	gen := strategy.New(rand.New(rand.NewSource(seed + 1)))

	// ---- Scheduler ----
	sched := scheduler.New(scheduler.Config{
		Symbol:       cfg.Symbol,
		BasePrice:    cfg.BasePrice,
		TickInterval: cfg.TickInterval,
		SignalEvery:  cfg.SignalEvery,
	}, walker, gen)
	sched.OnDropUpdate = prom.DroppedTotal.Inc
	sched.OnTickDone = func(d time.Duration) { prom.TickDuration.Observe(d.Seconds()) }

	// ---- Update fan-out: gateway + metrics (+ optional redis) ----
	fanout := bus.New(1024)
	fanout.OnDrop = func(int) { prom.DroppedTotal.Inc() }
	hubCh := fanout.Subscribe()
	statsCh := fanout.Subscribe()

	// ---- Optional Redis PubSub mirror ----
	var redisPub *redisstore.Publisher
	var redisCh <-chan model.Update
	if cfg.RedisAddr != "" {
		var err error
		redisPub, err = redisstore.New(redisstore.PublisherConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			log.Printf("[feedd] WARNING: redis init failed: %v (continuing without redis)", err)
		} else {
			defer redisPub.Close()
			redisCh = fanout.Subscribe()
		}
	}

	go fanout.Run(ctx, sched.Updates())

	// ---- Signal fan-out: notification (+ optional redis, journal) ----
	notifyCh := make(chan model.Signal, 16)
	var redisSigCh, journalCh chan model.Signal
	if redisPub != nil {
		redisSigCh = make(chan model.Signal, 16)
	}

	var journal *sqlitestore.Journal
	if cfg.SignalDBPath != "" {
		var err error
		journal, err = sqlitestore.New(sqlitestore.JournalConfig{DBPath: cfg.SignalDBPath})
		if err != nil {
			log.Fatalf("[feedd] sqlite init failed: %v", err)
		}
		defer journal.Close()
		journalCh = make(chan model.Signal, 16)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case sig, ok := <-sched.Signals():
				if !ok {
					return
				}
				prom.SignalsTotal.WithLabelValues(string(sig.Type)).Inc()
				for _, ch := range []chan model.Signal{notifyCh, redisSigCh, journalCh} {
					if ch == nil {
						continue
					}
					select {
					case ch <- sig:
					default: // slow signal consumer — drop
					}
				}
			}
		}
	}()

	// ---- Notification collaborators ----
	notifiers := []notification.Notifier{notification.NewLogNotifier()}
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != "" {
		notifiers = append(notifiers, notification.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID))
		log.Println("[feedd] telegram notifier enabled")
	}
	if cfg.WebhookURL != "" {
		notifiers = append(notifiers, notification.NewWebhookNotifier(cfg.WebhookURL))
		log.Println("[feedd] webhook notifier enabled")
	}
	go notification.Dispatch(ctx, notifyCh, notifiers)

	if redisPub != nil {
		go redisPub.Run(ctx, redisCh)
		go redisPub.RunSignals(ctx, cfg.Symbol, redisSigCh)
	}
	if journal != nil {
		go journal.Run(ctx, cfg.Symbol, journalCh)
	}

	// ---- Stats consumer feeds metrics + health ----
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case u, ok := <-statsCh:
				if !ok {
					return
				}
				prom.TicksTotal.Inc()
				prom.AnalysesTotal.Inc()
				health.SetLastTickTime(u.TS)
			}
		}
	}()

	// ---- Gateway (display collaborator) ----
	hub := gateway.NewHub()
	hub.OnClientChange = func(n int) { prom.WSClients.Set(float64(n)) }
	go hub.Run(ctx, hubCh)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.HandleWS)
	mux.HandleFunc("/api/start", func(w http.ResponseWriter, r *http.Request) {
		sched.Start()
		health.SetFeedActive(true)
		w.Write([]byte(`{"active":true}`))
	})
	mux.HandleFunc("/api/stop", func(w http.ResponseWriter, r *http.Request) {
		sched.Stop()
		health.SetFeedActive(false)
		w.Write([]byte(`{"active":false}`))
	})
	gatewaySrv := &http.Server{Addr: cfg.GatewayAddr, Handler: mux}
	go func() {
		log.Printf("[feedd] gateway listening on %s (WebSocket: ws://localhost%s/ws)", cfg.GatewayAddr, cfg.GatewayAddr)
		if err := gatewaySrv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("[feedd] gateway error: %v", err)
		}
	}()

	// ---- Run ----
	sched.Start()
	health.SetFeedActive(true)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Println("[feedd] shutting down...")

	sched.Stop()
	health.SetFeedActive(false)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	gatewaySrv.Shutdown(shutdownCtx)
	metricsSrv.Stop(shutdownCtx)
	slogger.Info("stopped")
}
