package main

import (
	"fmt"

	"github.com/dot5enko/metatable/bufferview"
	"github.com/dot5enko/metatable/schema"
	"github.com/dot5enko/metatable/schemamanager"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// app is the state shared by the subcommands of one root command.
type app struct {
	configFile string

	config  *viper.Viper
	logger  *zap.Logger
	schemas *schemamanager.SchemaManager
}

func NewRootCmd() *cobra.Command {

	a := &app{
		config:  newConfig(),
		logger:  zap.NewNop(),
		schemas: schemamanager.NewSchemaManager(),
	}

	root := &cobra.Command{
		Use:   "metatable",
		Short: "Pack, inspect and edit binary metadata tables",
		Long: `metatable stores per-entity property values of one schema class as packed
little-endian columns and gives row level access to them.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadConfig(cmd); err != nil {
				return err
			}
			a.logger = newLogger(a.config.GetString(cfgKeyLogLevel))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default: ./metatable.yaml)")
	flags.String("schema", "", "schema document")
	flags.String("class", "", "class id inside the schema")
	flags.String("offset-type", "", "offset type of array and string offsets (UINT8, UINT16, UINT32, UINT64)")
	flags.String("log-level", "", "log level")

	root.AddCommand(newPackCmd(a))
	root.AddCommand(newInspectCmd(a))
	root.AddCommand(newGetCmd(a))
	root.AddCommand(newSetCmd(a))
	root.AddCommand(newFindCmd(a))

	return root
}

// newLogger builds the development logger at level, a broken config falls back
// to a nop logger.
func newLogger(level string) *zap.Logger {

	cfg := zap.NewDevelopmentConfig()

	if level != "" {
		if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
			cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
		}
	}

	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func (a *app) host() *bufferview.Host {
	return bufferview.NewHost(bufferview.Capabilities{
		NativeInt64:        a.config.GetBool(cfgKeyNativeInt64),
		NativeInt64Storage: a.config.GetBool(cfgKeyNativeInt64Storage),
	}, func(message string) {
		a.logger.Warn(message)
	})
}

func (a *app) offsetType() (schema.ValueType, error) {
	name := a.config.GetString(cfgKeyOffsetType)

	typ, err := schema.ParseValueType(name)
	if err != nil {
		return schema.NoValueType, err
	}

	if !typ.IsOffsetType() {
		return schema.NoValueType, fmt.Errorf("%s is not an offset type", name)
	}
	return typ, nil
}

func (a *app) class() (*schema.Class, error) {
	path := a.config.GetString(cfgKeySchema)
	if path == "" {
		return nil, fmt.Errorf("no schema given, use --schema or '%s' in config", cfgKeySchema)
	}

	classId := a.config.GetString(cfgKeyClass)
	if classId == "" {
		return nil, fmt.Errorf("no class given, use --class or '%s' in config", cfgKeyClass)
	}

	return a.schemas.Class(path, classId)
}
