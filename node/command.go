package node

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/spacemeshos/go-agewitness/cmd"
	"github.com/spacemeshos/go-agewitness/common/types"
	"github.com/spacemeshos/go-agewitness/config"
	"github.com/spacemeshos/go-agewitness/config/presets"
	"github.com/spacemeshos/go-agewitness/log"
	"github.com/spacemeshos/go-agewitness/p2p/pubsub"
	"github.com/spacemeshos/go-agewitness/tradelimit"
	"github.com/spacemeshos/go-agewitness/witness"
)

const cleanupTimeout = 30 * time.Second

// GetCommand returns the root command of the agewitness executable.
func GetCommand() *cobra.Command {
	conf := config.DefaultConfig()
	root := &cobra.Command{
		Use:          "agewitness",
		Short:        "account age witness node",
		SilenceUsage: true,
	}
	configPath := cmd.AddFlags(root.PersistentFlags(), &conf)

	root.AddCommand(
		&cobra.Command{
			Use:   "node",
			Short: "start the node, issue witnesses for configured accounts and serve peers",
			RunE: func(c *cobra.Command, _ []string) error {
				app, err := prepare(c, *configPath, &conf)
				if err != nil {
					return err
				}
				if err := app.Lock(); err != nil {
					return err
				}
				defer app.Unlock()
				if err := app.LoadIdentity(); err != nil {
					return err
				}
				ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
				defer cancel()
				defer waitStopped(app, cleanupTimeout)
				if err := app.Start(ctx); err != nil {
					app.log.Error("node failed", zap.Error(err))
					return err
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "issue <account-file>",
			Short: "issue the witness for an account without broadcasting it",
			Args:  cobra.ExactArgs(1),
			RunE: func(c *cobra.Command, args []string) error {
				app, err := prepare(c, *configPath, &conf)
				if err != nil {
					return err
				}
				if err := app.Lock(); err != nil {
					return err
				}
				defer app.Unlock()
				if err := app.LoadIdentity(); err != nil {
					return err
				}
				if err := app.setupDB(); err != nil {
					return err
				}
				defer app.Cleanup(context.Background())
				if err := app.initServices(c.Context(), &pubsub.NullPubSub{}); err != nil {
					return err
				}
				fields, salt, err := LoadAccountFile(app.fs, args[0])
				if err != nil {
					return err
				}
				w, err := app.service.GetOrCreateMyWitness(c.Context(), fields, salt, app.signer)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.OutOrStdout(), "commitment: %s\ncreated: %s\nsigner: %s\n",
					w.Hex(), w.Created().UTC().Format(time.RFC3339), w.PublicKey.String())
				return nil
			},
		},
		&cobra.Command{
			Use:   "verify <peer-address> <commitment> <base> <fiat|crypto>",
			Short: "challenge a peer to prove its witness and print the resulting trade limit",
			Args:  cobra.ExactArgs(4),
			RunE: func(c *cobra.Command, args []string) error {
				info, err := peer.AddrInfoFromString(args[0])
				if err != nil {
					return fmt.Errorf("parse peer address: %w", err)
				}
				commitment, err := types.HexToHash32(args[1])
				if err != nil {
					return fmt.Errorf("parse commitment: %w", err)
				}
				base, class, err := parseAmount(args[2], args[3])
				if err != nil {
					return err
				}
				app, err := prepare(c, *configPath, &conf)
				if err != nil {
					return err
				}
				if err := app.Lock(); err != nil {
					return err
				}
				defer app.Unlock()
				if err := app.LoadIdentity(); err != nil {
					return err
				}
				defer app.Cleanup(context.Background())
				if err := app.StartVerifier(c.Context()); err != nil {
					return err
				}
				if err := app.Host().Connect(c.Context(), *info); err != nil {
					return fmt.Errorf("connect to %s: %w", info.ID, err)
				}
				outcome, err := app.Client().Verify(c.Context(), info.ID, commitment)
				if err != nil {
					return err
				}
				subject := witness.Peer(outcome.Witness, outcome.Result)
				fmt.Fprintf(c.OutOrStdout(), "result: %s\ncreated: %s\nlimit: %d\n",
					outcome.Result.Reason,
					outcome.Witness.Created().UTC().Format(time.RFC3339),
					app.Service().TradeLimit(base, class, subject),
				)
				return nil
			},
		},
		&cobra.Command{
			Use:   "limit <age> <base> <fiat|crypto>",
			Short: "print the trade limit of an account with the given witness age",
			Args:  cobra.ExactArgs(3),
			RunE: func(c *cobra.Command, args []string) error {
				if err := configure(c, *configPath, &conf); err != nil {
					return err
				}
				age, err := time.ParseDuration(args[0])
				if err != nil {
					return fmt.Errorf("parse age: %w", err)
				}
				base, class, err := parseAmount(args[1], args[2])
				if err != nil {
					return err
				}
				policy, err := tradelimit.New(conf.TradeLimit.Schedule)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.OutOrStdout(), "category: %s\nlimit: %d\n",
					tradelimit.Categorize(age), policy.TradeLimit(base, class, age))
				return nil
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "print the version of the build",
			Run: func(c *cobra.Command, _ []string) {
				fmt.Fprintf(c.OutOrStdout(), "%s+%s+%s\n", cmd.Version, cmd.Branch, cmd.Commit)
			},
		},
	)
	return root
}

func parseAmount(base, class string) (uint64, tradelimit.CurrencyClass, error) {
	amount, err := strconv.ParseUint(base, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parse base: %w", err)
	}
	var cc tradelimit.CurrencyClass
	if err := cc.UnmarshalText([]byte(class)); err != nil {
		return 0, 0, err
	}
	return amount, cc, nil
}

// prepare loads the configuration and creates an initialized App.
func prepare(c *cobra.Command, configPath string, conf *config.Config) (*App, error) {
	if err := configure(c, configPath, conf); err != nil {
		return nil, err
	}
	log.JSONLog(conf.LOGGING.Encoder == config.JSONLogEncoder)
	logger := log.NewWithLevel("", zap.NewAtomicLevelAt(zapcore.DebugLevel))
	app := New(WithConfig(conf), WithLog(logger))
	if err := app.Initialize(); err != nil {
		return nil, err
	}
	return app, nil
}

// configure applies, in order of precedence: flags, the config file, the preset and defaults.
func configure(c *cobra.Command, configPath string, conf *config.Config) error {
	// flags are bound to conf, remember what was set before conf is rebuilt
	type setFlag struct {
		flag  *pflag.Flag
		value string
		slice []string
	}
	var changed []setFlag
	c.Flags().Visit(func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			changed = append(changed, setFlag{flag: f, slice: sv.GetSlice()})
			return
		}
		changed = append(changed, setFlag{flag: f, value: f.Value.String()})
	})

	vip := viper.New()
	if err := config.LoadConfig(configPath, vip); err != nil {
		return err
	}
	preset := vip.GetString("preset")
	if f := c.Flags().Lookup("preset"); f != nil && f.Changed {
		preset = f.Value.String()
	}
	if preset != "" {
		p, err := presets.Get(preset)
		if err != nil {
			return err
		}
		*conf = p
	} else {
		*conf = config.DefaultConfig()
	}
	if err := config.Unmarshal(vip, conf); err != nil {
		return err
	}
	for _, f := range changed {
		var err error
		if sv, ok := f.flag.Value.(pflag.SliceValue); ok {
			err = sv.Replace(f.slice)
		} else {
			err = f.flag.Value.Set(f.value)
		}
		if err != nil {
			return fmt.Errorf("reapply flag %s: %w", f.flag.Name, err)
		}
	}
	return nil
}
