package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/blackoutkit/blackout/internal/engine"
	"github.com/blackoutkit/blackout/internal/notify"
	"github.com/blackoutkit/blackout/internal/outages"
	"github.com/blackoutkit/blackout/internal/store"
	"github.com/blackoutkit/blackout/internal/telemetry"
	"github.com/blackoutkit/blackout/internal/uiapi"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

func main() {
	var port int
	var dbPath string
	var group string
	var providerURL string
	var mqttBroker string
	var mqttTopic string
	var refreshSpec string

	rootCmd := &cobra.Command{
		Use:   "blackoutd",
		Short: "Blackout planner HTTP server with scheduled refresh and live telemetry",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Local overrides for tokens and broker credentials
			godotenv.Load()

			if dbPath == "" {
				home, _ := os.UserHomeDir()
				dbPath = filepath.Join(home, ".blackout", "blackout.db")
			}

			st, err := store.NewStore(dbPath)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer st.Close()

			outagesClient := outages.NewClient(providerURL, group)

			var soc uiapi.SoCSource
			if mqttBroker != "" {
				listener, err := telemetry.Listen(mqttBroker, mqttTopic, "blackoutd")
				if err != nil {
					log.Printf("Telemetry disabled: %v", err)
				} else {
					defer listener.Close()
					soc = listener
				}
			}

			pushover := notify.NewPushoverClient(os.Getenv("PUSHOVER_APP_TOKEN"), os.Getenv("PUSHOVER_USER_KEY"))

			c := cron.New()
			_, err = c.AddFunc(refreshSpec, func() {
				refreshSchedule(st, outagesClient, soc, pushover, group)
			})
			if err != nil {
				return fmt.Errorf("invalid refresh schedule %q: %w", refreshSpec, err)
			}
			c.Start()
			defer c.Stop()
			log.Printf("Schedule refresh cron started (%s)", refreshSpec)

			srv := uiapi.NewServer(st, outagesClient, soc)

			addr := fmt.Sprintf(":%d", port)
			log.Printf("Blackout planner starting on port %d", port)
			log.Printf("Database: %s", dbPath)
			if soc != nil {
				log.Printf("Live battery telemetry: %s (%s)", mqttBroker, mqttTopic)
			}

			return http.ListenAndServe(addr, srv.Handler())
		},
	}

	rootCmd.Flags().IntVarP(&port, "port", "p", 8080, "HTTP port")
	rootCmd.Flags().StringVar(&dbPath, "db", "", "Database path")
	rootCmd.Flags().StringVarP(&group, "group", "g", "1.1", "Outage group")
	rootCmd.Flags().StringVar(&providerURL, "provider-url", "", "Outage schedule provider base URL")
	rootCmd.Flags().StringVar(&mqttBroker, "mqtt-broker", "", "MQTT broker host for battery telemetry (optional)")
	rootCmd.Flags().StringVar(&mqttTopic, "mqtt-topic", "home/battery/soc", "MQTT topic carrying the battery SoC percentage")
	rootCmd.Flags().StringVar(&refreshSpec, "refresh", "5 * * * *", "Cron spec for schedule refresh")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// refreshSchedule pulls the latest outage schedule, falls back to the
// deterministic mock when the provider is unreachable, and alerts when
// the refreshed schedule makes the stored configuration infeasible.
func refreshSchedule(st *store.Store, client *outages.Client, soc uiapi.SoCSource, pushover *notify.PushoverClient, group string) {
	log.Println("Refreshing outage schedule...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	source := "provider"
	schedule, err := client.FetchSchedule(ctx)
	if err != nil {
		log.Printf("Provider fetch failed: %v, using mock schedule", err)
		schedule = outages.MockSchedule(group)
		source = "mock"
	}

	if err := st.SaveSchedule(schedule, source); err != nil {
		log.Printf("Failed to save schedule: %v", err)
		return
	}
	log.Printf("Saved %d availability periods (%s)", len(schedule.Periods), source)

	battery, err := st.GetBattery()
	if err != nil {
		return
	}
	if soc != nil {
		if value, ok := soc.Current(); ok {
			battery.CurrentCharge = value
		}
	}
	appliances, err := st.GetAppliances()
	if err != nil {
		return
	}

	hour := uiapi.WallClock()
	result := engine.CalculateBatteryStatus(battery, appliances, engine.PowerSchedule{Periods: schedule.Periods}, hour)
	if result.CanSurviveOutage || !pushover.Configured() {
		return
	}

	situation := engine.AnalyzeSituation(battery, engine.PowerSchedule{Periods: schedule.Periods}, hour)
	minLevel := battery.CurrentCharge
	for _, p := range result.Timeline {
		if p.BatteryLevel < minLevel {
			minLevel = p.BatteryLevel
		}
	}

	if err := pushover.SendOutageAlert(situation.TotalOutageHours, minLevel); err != nil {
		log.Printf("Failed to send Pushover alert: %v", err)
	} else {
		log.Println("Outage alert sent")
	}
}
