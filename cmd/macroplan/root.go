package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"lg/coach-energy-api/logger"
	"lg/coach-energy-api/oracle"
)

// env holds what every subcommand shares, resolved once in PersistentPreRunE.
type env struct {
	getenv    func(string) string
	output    string
	useOracle bool
	verbose   bool

	log    *logger.Logger
	oracle oracle.Oracle
}

func newRootCmd(getenv func(string) string) *cobra.Command {
	e := &env{getenv: getenv}

	root := &cobra.Command{
		Use:           "macroplan",
		Short:         "Estimate BMR, activity energy and nutrition targets",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.init()
		},
	}
	root.PersistentFlags().StringVarP(&e.output, "output", "o", "json", "output format: json or yaml")
	root.PersistentFlags().BoolVar(&e.useOracle, "oracle", false, "call the estimation oracle configured by OPENAI_API_KEY")
	root.PersistentFlags().BoolVarP(&e.verbose, "verbose", "v", false, "log to stderr")

	root.AddCommand(
		newBMRCmd(e),
		newPlanCmd(e),
		newActivityCmd(e),
		newWeeklyCmd(e),
	)
	return root
}

func (e *env) init() error {
	if e.output != "json" && e.output != "yaml" {
		return fmt.Errorf("--output must be json or yaml, got %q", e.output)
	}

	e.log = logger.Nop()
	if e.verbose {
		log, err := logger.New(e.getenv("LOG_MODE"))
		if err != nil {
			return fmt.Errorf("building logger: %w", err)
		}
		e.log = log
	}

	if !e.useOracle {
		return nil
	}
	// .env is optional; variables already in the environment win.
	_ = godotenv.Load()
	cfg := oracle.LoadConfig()
	if !cfg.Usable() {
		return fmt.Errorf("--oracle needs OPENAI_API_KEY and ORACLE_ENABLED not false")
	}
	e.oracle = oracle.NewOpenAIClient(cfg, oracle.NewLogObserver(e.log))
	return nil
}

// render writes v as indented JSON, or as YAML with the same field names.
func render(w io.Writer, format string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if format != "yaml" {
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return err
	}
	return enc.Close()
}

func (e *env) print(cmd *cobra.Command, v any) error {
	return render(cmd.OutOrStdout(), e.output, v)
}

// warn prints engine warnings to stderr so stdout stays machine-readable.
func warn(cmd *cobra.Command, warnings []string) {
	for _, w := range warnings {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning: "+strings.TrimSpace(w))
	}
}
