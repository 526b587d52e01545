package commands

import (
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	cargoharness "github.com/contriboss/cargo-harness-go"
)

func newRunCommand() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full verification pipeline",
		Long: `Run installs the toolchain, checks formatting, executes the test matrix in
declaration order, then runs the example smoke tests. Execution is strictly
sequential and fail-fast; the exit status mirrors the first failing step.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := newSettings(cmd)
			if err != nil {
				return err
			}

			matrix := cargoharness.DefaultMatrix()
			smoke := cargoharness.DefaultSmokeSets()
			example := v.GetString("example")

			if matrixFile := v.GetString("matrix-file"); matrixFile != "" {
				matrix, smoke, example, err = cargoharness.LoadMatrixFile(matrixFile)
				if err != nil {
					return err
				}
			}

			cfg, err := cargoharness.NewRunConfig(cargoharness.Options{
				SourceDir:   v.GetString("source"),
				InstallRoot: v.GetString("install-root"),
				Example:     example,
				Verbose:     verbose,
				Logger:      &log.Logger,
				Toolchain: cargoharness.ToolchainSpec{
					HostTriple:   v.GetString("host"),
					Channel:      v.GetString("channel"),
					NoModifyPath: true,
					DistServer:   v.GetString("dist-server"),
				},
			})
			if err != nil {
				return err
			}

			pipeline := cargoharness.NewPipeline(cfg, matrix, smoke)
			results, runErr := pipeline.Run(cmd.Context())
			if runErr != nil {
				return &runError{code: cargoharness.ExitCode(results, runErr), err: runErr}
			}

			log.Info().Int("steps", len(results)).Msg("verification passed")
			return nil
		},
	}

	runCmd.Flags().String("source", ".", "crate source directory (contains Cargo.toml)")
	runCmd.Flags().String("install-root", "", "toolchain install root (default: unique temp dir)")
	runCmd.Flags().String("channel", "stable", "toolchain channel")
	runCmd.Flags().String("host", "", "host triple (default: detected)")
	runCmd.Flags().String("dist-server", "", "toolchain distribution endpoint")
	runCmd.Flags().String("example", cargoharness.DefaultExample, "example binary for smoke runs")
	runCmd.Flags().String("matrix-file", "", "YAML matrix manifest overriding the built-in matrix")

	return runCmd
}

// newSettings merges command flags, CARGO_HARNESS_* environment variables,
// and the optional --config file, in that precedence order.
func newSettings(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("CARGO_HARNESS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, err
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	return v, nil
}
