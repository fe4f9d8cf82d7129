package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/boristopalov/gymlink/internal/cartpole"
	"github.com/boristopalov/gymlink/internal/logger"
	"github.com/boristopalov/gymlink/pkg/agent"
	"github.com/boristopalov/gymlink/pkg/config"
	"github.com/boristopalov/gymlink/pkg/gym"
	"github.com/boristopalov/gymlink/pkg/transport"
)

var (
	cfgPath string
	addr    string
	network string
	seed    int64
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gymlink",
		Short: "gymlink exposes a step-driven simulation to an external RL agent over a bounded duplex channel.",
	}
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to a YAML run config")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 0, "seed for the environment and the random agent")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the cartpole demo in-process: simulation and random agent over a pipe",
		RunE:  runDemo,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose the cartpole simulation on a socket and wait for an agent process",
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	serveCmd.Flags().StringVar(&network, "network", "", "\"tcp\" or \"unix\" (overrides config)")

	agentCmd := &cobra.Command{
		Use:   "agent",
		Short: "Connect to a serving simulation as a random agent",
		RunE:  runAgent,
	}
	agentCmd.Flags().StringVar(&addr, "addr", "", "dial address (overrides config)")
	agentCmd.Flags().StringVar(&network, "network", "", "\"tcp\" or \"unix\" (overrides config)")

	for _, envFile := range []string{
		".env",
		"../../.env",
	} {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(agentCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (config.RunConfig, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return cfg, err
	}
	if addr != "" {
		cfg.Addr = addr
	}
	if network != "" {
		cfg.Network = network
	}
	if seed != 0 {
		cfg.Seed = seed
	}
	logger.Configure(cfg.LogLevel)
	return cfg, nil
}

func runDemo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	simCh, agentCh := transport.Pipe(cfg.Capacity)
	defer simCh.Close()

	errCh := make(chan error, 1)
	go func() {
		errCh <- driveAgent(agentCh, cfg)
	}()

	if err := driveSim(simCh, cfg); err != nil {
		return err
	}
	return <-errCh
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger.Logger.Info("waiting for agent", "network", cfg.Network, "addr", cfg.Addr)
	ch, err := transport.Listen(cfg.Network, cfg.Addr, cfg.Capacity)
	if err != nil {
		return err
	}
	defer ch.Close()
	return driveSim(ch, cfg)
}

func runAgent(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ch, err := transport.Dial(cfg.Network, cfg.Addr, cfg.Capacity)
	if err != nil {
		return err
	}
	defer ch.Close()
	return driveAgent(ch, cfg)
}

// driveSim runs the simulation half: bind the cartpole model, then exchange
// state for action until the agent requests a stop or the step limit is
// reached.
func driveSim(ch transport.Channel, cfg config.RunConfig) error {
	model := cartpole.New(cfg.Seed)
	iface := gym.New(ch,
		gym.WithEnvID(cfg.EnvID),
		gym.WithActionValidation(),
	)

	err := iface.Notify(model)
	for err == nil && !iface.Terminated() {
		if cfg.MaxSteps > 0 && model.Steps() >= cfg.MaxSteps {
			err = iface.NotifySimulationEnd()
			break
		}
		err = iface.NotifyCurrentState()
	}
	if errors.Is(err, gym.ErrStopRequested) {
		logger.Logger.Info("agent requested stop", "env", iface.EnvID(), "steps", model.Steps())
		return nil
	}
	if err != nil {
		return fmt.Errorf("simulation: %w", err)
	}
	logger.Logger.Info("simulation finished", "env", iface.EnvID(), "steps", model.Steps())
	return nil
}

// driveAgent runs the agent half: handshake, then answer every state with a
// random action until the episode ends.
func driveAgent(ch transport.Channel, cfg config.RunConfig) error {
	opts := []agent.Option{}
	if cfg.Seed != 0 {
		opts = append(opts, agent.WithSeed(cfg.Seed))
	}
	client, err := agent.Connect(ch, opts...)
	if err != nil {
		return fmt.Errorf("agent: %w", err)
	}

	var total float32
	for {
		step, err := client.Recv()
		if err != nil {
			return fmt.Errorf("agent: %w", err)
		}
		total += step.Reward
		if step.GameOver {
			logger.Logger.Info("episode finished",
				"reward", total, "reason", step.Reason, "info", step.Info)
			return client.SendStop()
		}
		if err := client.Send(client.Sample()); err != nil {
			return fmt.Errorf("agent: %w", err)
		}
	}
}
