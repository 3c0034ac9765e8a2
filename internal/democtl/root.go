// Package democtl is the operator CLI for a running consoled daemon. It is a
// thin veneer over the HTTP API, meant for demos and troubleshooting when the
// browser console itself is what's being debugged.
package democtl

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"consoled/pkg/types"
)

// BuildRootCmd constructs the democtl command tree.
func BuildRootCmd() *cobra.Command {
	defaultAddr := "http://127.0.0.1:8090"
	if v := os.Getenv("DEMOCTL_ADDR"); v != "" {
		defaultAddr = v
	}

	var (
		addr    string
		timeout time.Duration
		client  *Client
	)

	root := &cobra.Command{
		Use:           "democtl",
		Short:         "Control a running consoled demo session",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&addr, "addr", defaultAddr, "consoled base URL (defaults DEMOCTL_ADDR)")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		client = NewClient(addr, timeout)
	}

	root.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the current model session",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := client.Session()
			if err != nil {
				return err
			}
			printStatus(cmd, s)
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "models",
		Short: "List demo models",
		RunE: func(cmd *cobra.Command, args []string) error {
			models, err := client.Models()
			if err != nil {
				return err
			}
			for _, m := range models {
				fmt.Fprintf(cmd.OutOrStdout(), "%-18s %-28s %s\n", m.ID, m.Name, strings.Join(m.GatewayNames, ", "))
			}
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "activate <model>",
		Short: "Activate a demo model (deepseek-r1-70b, llama3-70b or dual)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := client.Activate(args[0])
			if err != nil {
				return err
			}
			printStatus(cmd, s)
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "deactivate",
		Short: "Put the active model to sleep",
		RunE: func(cmd *cobra.Command, args []string) error {
			return client.Deactivate()
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "cancel",
		Short: "Cancel the pending model switch",
		RunE: func(cmd *cobra.Command, args []string) error {
			return client.CancelPending()
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Reset the whole demo session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return client.Clear()
		},
	})

	touchCmd := &cobra.Command{
		Use:   "touch",
		Short: "Record user activity (resets the idle timer)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("kiosk-open") {
				open, _ := cmd.Flags().GetBool("kiosk-open")
				return client.Touch(&open)
			}
			return client.Touch(nil)
		},
	}
	touchCmd.Flags().Bool("kiosk-open", false, "Also set whether the guided kiosk is open")
	root.AddCommand(touchCmd)

	root.AddCommand(&cobra.Command{
		Use:   "challenges",
		Short: "List guided-demo challenges",
		RunE: func(cmd *cobra.Command, args []string) error {
			cs, err := client.Challenges()
			if err != nil {
				return err
			}
			for _, c := range cs {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", c.ID, c.Title)
				for i, p := range c.Prompts {
					fmt.Fprintf(cmd.OutOrStdout(), "  [%d] %s\n", i, p)
				}
			}
			return nil
		},
	})

	runCmd := &cobra.Command{
		Use:   "run <challenge-id>",
		Short: "Run a challenge prompt against the active model",
		Example: "  democtl run reasoning --prompt \"Why is the sky blue?\"\n" +
			"  democtl run compare --chip 0",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt, _ := cmd.Flags().GetString("prompt")
			var chip *int
			if cmd.Flags().Changed("chip") {
				n, _ := cmd.Flags().GetInt("chip")
				chip = &n
			}
			if prompt == "" && chip == nil {
				return fmt.Errorf("provide --prompt or --chip")
			}
			if chip != nil && prompt == "" {
				cs, err := client.Challenges()
				if err != nil {
					return err
				}
				for _, c := range cs {
					if c.ID == args[0] && *chip < len(c.Prompts) {
						prompt = c.Prompts[*chip]
					}
				}
				if prompt == "" {
					return fmt.Errorf("no chip %d for challenge %s", *chip, args[0])
				}
			}
			out, err := client.RunChallenge(args[0], prompt, chip)
			if err != nil {
				return err
			}
			printOutput(cmd, out)
			return nil
		},
	}
	runCmd.Flags().String("prompt", "", "Prompt text (custom prompts pass validation)")
	runCmd.Flags().Int("chip", 0, "Index of a canned prompt chip")
	root.AddCommand(runCmd)

	root.AddCommand(&cobra.Command{
		Use:   "assets",
		Short: "List gateway assets",
		RunE: func(cmd *cobra.Command, args []string) error {
			assets, err := client.Assets()
			if err != nil {
				return err
			}
			for _, a := range assets {
				fmt.Fprintf(cmd.OutOrStdout(), "%-24s %s\n", a.ID, a.Name)
			}
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "metrics",
		Short: "Show system metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := client.Metrics()
			if err != nil {
				return err
			}
			src := "gateway"
			if m.Simulated {
				src = "simulated"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cpu=%.1f%% mem=%.1f%% disk=%.1f%% gpu=%.1f%% gpu-mem=%.1f%% (%s)\n",
				m.CPUPercent, m.MemoryPercent, m.DiskPercent, m.GPUPercent, m.GPUMemoryPercent, src)
			return nil
		},
	})

	prefsCmd := &cobra.Command{Use: "prefs", Short: "Manage persisted UI preferences"}
	prefsCmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List all preferences",
			RunE: func(cmd *cobra.Command, args []string) error {
				ps, err := client.PrefList()
				if err != nil {
					return err
				}
				for _, p := range ps {
					fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", p.Key, p.Value)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "get <key>",
			Short: "Print one preference",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				p, err := client.PrefGet(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), p.Value)
				return nil
			},
		},
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Store a preference value",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return client.PrefSet(args[0], args[1])
			},
		},
		&cobra.Command{
			Use:   "del <key>",
			Short: "Delete a preference",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return client.PrefDelete(args[0])
			},
		},
	)
	root.AddCommand(prefsCmd)

	return root
}

func printStatus(cmd *cobra.Command, s types.SessionStatus) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "model:    %s\n", s.ActiveModel)
	fmt.Fprintf(w, "status:   %s\n", s.Status)
	if s.PendingRequest != "" {
		fmt.Fprintf(w, "pending:  %s\n", s.PendingRequest)
	}
	if s.Status == "warming" {
		fmt.Fprintf(w, "loading:  %d%% (%s)\n", s.LoadingProgress, s.LoadingStage)
	}
	if s.LoadError != "" {
		fmt.Fprintf(w, "error:    %s\n", s.LoadError)
	}
	if s.PullingModel != "" {
		fmt.Fprintf(w, "pulling:  %s (%d%%)\n", s.PullingModel, s.PullProgress)
	}
	if s.SessionRemaining != nil {
		fmt.Fprintf(w, "session:  %ds left\n", *s.SessionRemaining)
	}
	fmt.Fprintf(w, "kiosk:    open=%v\n", s.KioskOpen)
}

func printOutput(cmd *cobra.Command, out types.ModelOutput) {
	w := cmd.OutOrStdout()
	if out.Error != "" {
		fmt.Fprintf(w, "error: %s\n", out.Error)
		return
	}
	if out.Reasoned != "" {
		fmt.Fprintf(w, "--- reasoned ---\n%s\n", out.Reasoned)
	}
	if out.Explained != "" {
		fmt.Fprintf(w, "--- explained ---\n%s\n", out.Explained)
	}
}
