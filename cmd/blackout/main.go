package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/blackoutkit/blackout/internal/engine"
	"github.com/blackoutkit/blackout/internal/outages"
	"github.com/blackoutkit/blackout/internal/store"
	"github.com/blackoutkit/blackout/internal/uiapi"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	dbPath  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "blackout",
		Short: "Blackout - plan household energy use through scheduled grid outages",
		Long: `Blackout simulates your home battery over the next 24 hours given the
published outage schedule and your appliance configuration, and ranks
alternative configurations by feasibility.`,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.blackout/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (default is $HOME/.blackout/blackout.db)")

	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(situationCmd())
	rootCmd.AddCommand(scenariosCmd())
	rootCmd.AddCommand(fetchCmd())
	rootCmd.AddCommand(applianceCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		configDir := filepath.Join(home, ".blackout")
		os.MkdirAll(configDir, 0755)

		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetDefault("outage.group", "1.1")
	viper.SetDefault("outage.base_url", "")

	viper.AutomaticEnv()
	viper.ReadInConfig()

	if dbPath == "" {
		home, _ := os.UserHomeDir()
		dbPath = filepath.Join(home, ".blackout", "blackout.db")
	}
}

func openStore() (*store.Store, error) {
	st, err := store.NewStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return st, nil
}

func loadInputs(st *store.Store) (engine.BatterySettings, []engine.Appliance, engine.PowerSchedule, error) {
	battery, err := st.GetBattery()
	if err != nil {
		return engine.BatterySettings{}, nil, engine.PowerSchedule{}, fmt.Errorf("getting battery settings: %w (run 'blackout init' first)", err)
	}

	appliances, err := st.GetAppliances()
	if err != nil {
		return engine.BatterySettings{}, nil, engine.PowerSchedule{}, fmt.Errorf("getting appliances: %w", err)
	}

	schedule, err := st.GetSchedule()
	if err != nil {
		return engine.BatterySettings{}, nil, engine.PowerSchedule{}, fmt.Errorf("getting power schedule: %w (run 'blackout fetch --save' or 'blackout init')", err)
	}

	return battery, appliances, schedule, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize with the default battery and appliance catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.SaveBattery(engine.DefaultBattery()); err != nil {
				return err
			}
			for i, a := range engine.DefaultAppliances() {
				if err := st.SaveAppliance(a, i); err != nil {
					return err
				}
			}

			group := viper.GetString("outage.group")
			if err := st.SaveSchedule(outages.MockSchedule(group), "mock"); err != nil {
				return err
			}

			fmt.Println("✓ Initialized default battery and appliances")
			fmt.Printf("Database: %s\n", dbPath)
			fmt.Println("\nNext steps:")
			fmt.Println("  1. Fetch the real outage schedule: blackout fetch --save")
			fmt.Println("  2. Check the projection: blackout status")
			fmt.Println("  3. Compare configurations: blackout scenarios")

			return nil
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Run the 24h battery projection for the current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			battery, appliances, schedule, err := loadInputs(st)
			if err != nil {
				return err
			}

			return printJSON(engine.CalculateBatteryStatus(battery, appliances, schedule, uiapi.WallClock()))
		},
	}
}

func situationCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "situation",
		Short: "Summarize the next 24h of grid availability",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			battery, _, schedule, err := loadInputs(st)
			if err != nil {
				return err
			}

			return printJSON(engine.AnalyzeSituation(battery, schedule, uiapi.WallClock()))
		},
	}
}

func scenariosCmd() *cobra.Command {
	var applyID string

	cmd := &cobra.Command{
		Use:   "scenarios",
		Short: "Rank alternative appliance configurations by feasibility",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			battery, appliances, schedule, err := loadInputs(st)
			if err != nil {
				return err
			}

			scenarios := engine.GenerateScenarios(battery, appliances, schedule, uiapi.WallClock())

			if applyID == "" {
				return printJSON(scenarios)
			}

			for _, s := range scenarios {
				if s.ID != applyID {
					continue
				}
				if err := st.ReplaceAppliances(s.Appliances); err != nil {
					return err
				}
				fmt.Printf("✓ Applied scenario: %s\n", s.Name)
				return nil
			}
			return fmt.Errorf("scenario not available right now: %s", applyID)
		},
	}

	cmd.Flags().StringVarP(&applyID, "apply", "a", "", "Apply the named scenario instead of listing")

	return cmd
}

func fetchCmd() *cobra.Command {
	var group string
	var save bool

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch the outage schedule from the provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			if group == "" {
				group = viper.GetString("outage.group")
			}

			client := outages.NewClient(viper.GetString("outage.base_url"), group)
			schedule, err := client.FetchSchedule(ctx)
			if err != nil {
				return err
			}

			if save {
				st, err := openStore()
				if err != nil {
					return err
				}
				defer st.Close()
				if err := st.SaveSchedule(schedule, "provider"); err != nil {
					return err
				}
				fmt.Fprintf(os.Stderr, "Saved %d availability periods\n", len(schedule.Periods))
			}

			return printJSON(schedule)
		},
	}

	cmd.Flags().StringVarP(&group, "group", "g", "", "Outage group (defaults to config)")
	cmd.Flags().BoolVar(&save, "save", false, "Save the fetched schedule")

	return cmd
}

func applianceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "appliance",
		Short: "Manage appliances",
	}

	cmd.AddCommand(applianceAddCmd())
	cmd.AddCommand(applianceListCmd())
	cmd.AddCommand(applianceToggleCmd("enable", true))
	cmd.AddCommand(applianceToggleCmd("disable", false))

	return cmd
}

func applianceAddCmd() *cobra.Command {
	var name string
	var power float64
	var icon, color string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a new appliance",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			existing, err := st.GetAppliances()
			if err != nil {
				return err
			}

			appliance := engine.Appliance{
				ID:      uuid.NewString(),
				Name:    name,
				Icon:    icon,
				Color:   color,
				PowerKw: power,
				Enabled: true,
			}

			if err := st.SaveAppliance(appliance, len(existing)); err != nil {
				return err
			}

			fmt.Printf("✓ Added appliance: %s\n", name)
			fmt.Printf("  ID: %s\n", appliance.ID)
			fmt.Printf("  Power: %.2f kW\n", power)

			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Appliance name (required)")
	cmd.Flags().Float64VarP(&power, "power", "p", 1.0, "Power draw in kW")
	cmd.Flags().StringVar(&icon, "icon", "", "Icon key")
	cmd.Flags().StringVar(&color, "color", "", "Display color")

	cmd.MarkFlagRequired("name")

	return cmd
}

func applianceListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all appliances",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			appliances, err := st.GetAppliances()
			if err != nil {
				return err
			}

			if len(appliances) == 0 {
				fmt.Println("No appliances configured")
				return nil
			}

			fmt.Printf("%-20s %-38s %8s %8s %s\n", "NAME", "ID", "POWER", "ENABLED", "SCHEDULE")
			fmt.Println("--------------------------------------------------------------------------------")

			for _, a := range appliances {
				enabled := "Yes"
				if !a.Enabled {
					enabled = "No"
				}
				fmt.Printf("%-20s %-38s %6.1fkW %8s %s\n",
					a.Name, a.ID, a.PowerKw, enabled, formatSchedule(a.Schedule))
			}

			return nil
		},
	}
}

func applianceToggleCmd(use string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: use + " an appliance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			appliance, err := st.GetAppliance(args[0])
			if err != nil {
				return fmt.Errorf("appliance not found: %s", args[0])
			}

			appliance.Enabled = enabled
			if err := st.SaveAppliance(appliance, 0); err != nil {
				return err
			}

			fmt.Printf("✓ %sd: %s\n", use, appliance.Name)
			return nil
		},
	}
}

func formatSchedule(ranges []engine.TimeRange) string {
	if len(ranges) == 0 {
		return "always"
	}
	out := ""
	for i, r := range ranges {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%.1f-%.1f", r.Start, r.End)
	}
	return out
}
