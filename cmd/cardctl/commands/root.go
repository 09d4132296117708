package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/benvon/card-collection/internal/collection"
	"github.com/benvon/card-collection/internal/dates"
	"github.com/benvon/card-collection/internal/logger"
	"github.com/benvon/card-collection/internal/models"
	"github.com/benvon/card-collection/internal/tagmatch"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// envPrefix namespaces cardctl settings in the environment, e.g. CARDS_NOW
const envPrefix = "CARDS"

// NewRootCmd creates the cardctl command tree. Each call gets its own viper
// instance so commands can be built independently in tests.
func NewRootCmd() *cobra.Command {
	v := viper.New()
	var path string

	cmd := &cobra.Command{
		Use:           "cardctl",
		Short:         "Inspect card collections from the command line",
		Long:          "Run the card filter pipeline and session scheduler over collection files, and manage stored collections.",
		SilenceErrors: true,
		SilenceUsage:  true,

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(v, path)
		},
	}

	cmd.PersistentFlags().StringVar(&path, "config", "", "config file (default is ./cardctl.yaml)")
	cmd.PersistentFlags().Bool("debug", false, "log pipeline decisions to stderr")
	cmd.PersistentFlags().String("now", "", "evaluate dates at this RFC 3339 time instead of the current time")
	cmd.PersistentFlags().String("language", "en", "BCP 47 language used for title sorting and search")
	cmd.PersistentFlags().StringSlice("featured-tag", nil, "pattern marking a tag as featured (repeatable)")
	cmd.PersistentFlags().StringSlice("gated-tag", nil, "pattern marking a tag as gated (repeatable)")

	_ = v.BindPFlag("debug", cmd.PersistentFlags().Lookup("debug"))
	_ = v.BindPFlag("now", cmd.PersistentFlags().Lookup("now"))
	_ = v.BindPFlag("language", cmd.PersistentFlags().Lookup("language"))
	_ = v.BindPFlag("tags.featured", cmd.PersistentFlags().Lookup("featured-tag"))
	_ = v.BindPFlag("tags.gated", cmd.PersistentFlags().Lookup("gated-tag"))

	cmd.AddCommand(newCardsCmd(v))
	cmd.AddCommand(newSessionsCmd(v))
	cmd.AddCommand(newValidateCmd())
	cmd.AddCommand(newImportCmd())
	cmd.AddCommand(newWatchCmd())

	return cmd
}

func initConfig(v *viper.Viper, path string) error {
	// Missing .env files are fine
	for _, envFile := range []string{".env", ".env.local"} {
		_ = godotenv.Load(envFile)
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("cardctl")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/cardctl")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

// settings are the pipeline inputs shared by every collection command
type settings struct {
	logger  *zap.Logger
	clock   dates.Clock
	matcher *tagmatch.Matcher
	lang    language.Tag
}

func loadSettings(v *viper.Viper) (*settings, error) {
	s := &settings{clock: dates.SystemClock{}, logger: zap.NewNop()}

	if v.GetBool("debug") {
		l, err := logger.NewDevelopmentLogger(true)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
		s.logger = l
	}

	if raw := v.GetString("now"); raw != "" {
		at, err := dates.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid --now: %w", err)
		}
		s.clock = dates.FixedClock(at)
	}

	lang, err := language.Parse(v.GetString("language"))
	if err != nil {
		return nil, fmt.Errorf("invalid --language %q: %w", v.GetString("language"), err)
	}
	s.lang = lang

	s.matcher, err = tagmatch.New(tagmatch.Config{
		Featured: v.GetStringSlice("tags.featured"),
		Gated:    v.GetStringSlice("tags.gated"),
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func loadCollection(path string) (*models.Collection, error) {
	c, err := collection.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return c, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func errorStrings(errs []error) []string {
	if len(errs) == 0 {
		return nil
	}
	out := make([]string, 0, len(errs))
	for _, err := range errs {
		out = append(out, err.Error())
	}
	return out
}

// nowOf is the time every command reports as its evaluation moment
func nowOf(s *settings) time.Time {
	return s.clock.Now().UTC()
}
