package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/richxcame/pairchat/pkg/chatclient"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const version = "1.0.0"

// app carries the resolved configuration and the client factory.
type app struct {
	v         *viper.Viper
	cfgFile   string
	out       io.Writer
	newClient func(baseURL, token string, opts ...chatclient.Option) *chatclient.Client
	sleeper   chatclient.Sleeper
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCmd(&app{
		v:         viper.New(),
		out:       os.Stdout,
		newClient: chatclient.NewClient,
	})

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "chatctl",
		Short: "Translate chat messages from the command line",
		Long: `chatctl talks to the translation API of the chat service.

Examples:
  chatctl translate 42 --target zh-CN
  chatctl translate 42 --target en --retries
  chatctl history 42 --target zh-TW
  chatctl prefer 42 --show-original=false --target en`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig()
		},
	}
	rootCmd.SetOut(a.out)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.chatctl.yaml)")
	rootCmd.PersistentFlags().String("server", "http://localhost:8080", "translation service base URL")
	rootCmd.PersistentFlags().String("token", "", "bearer token for the chat API")
	rootCmd.PersistentFlags().String("lang", "en", "language for error messages (en, zh-CN, zh-TW)")
	rootCmd.PersistentFlags().Duration("timeout", 15*time.Second, "per-request timeout")

	// Bind flags to viper
	bindFlags(a.v, rootCmd.PersistentFlags(), "server", "token", "lang", "timeout")

	rootCmd.AddCommand(newTranslateCmd(a), newHistoryCmd(a), newPreferCmd(a))
	return rootCmd
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet, names ...string) {
	for _, name := range names {
		_ = v.BindPFlag(name, fs.Lookup(name))
	}
}

func (a *app) initConfig() error {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			a.v.AddConfigPath(home)
		}
		a.v.AddConfigPath(".")
		a.v.SetConfigType("yaml")
		a.v.SetConfigName(".chatctl")
	}

	a.v.SetEnvPrefix("CHATCTL")
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if a.cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	return nil
}

func (a *app) client() *chatclient.Client {
	return a.newClient(
		a.v.GetString("server"),
		a.v.GetString("token"),
		chatclient.WithTimeout(a.v.GetDuration("timeout")),
		chatclient.WithLanguage(a.v.GetString("lang")),
	)
}

func newTranslateCmd(a *app) *cobra.Command {
	var (
		target  string
		source  string
		retries bool
	)

	cmd := &cobra.Command{
		Use:   "translate <messageId>",
		Short: "Translate a message into the target language",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := []chatclient.ControllerOption{chatclient.WithMessageLanguage(a.v.GetString("lang"))}
			if a.sleeper != nil {
				opts = append(opts, chatclient.WithSleeper(a.sleeper))
			}
			ctrl := chatclient.NewRetryController(a.client(), args[0], opts...)

			res, err := ctrl.Translate(cmd.Context(), target, source)
			for err != nil && retries && retryable(err) {
				snap := ctrl.Snapshot()
				if snap.RetryCount < chatclient.MaxRetries {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s, retrying in %s\n", snap.Err.Message, chatclient.BackoffDelay(snap.RetryCount))
				}
				res, err = ctrl.Retry(cmd.Context(), target, source)
			}
			if err != nil {
				return err
			}
			return printJSON(a.out, res)
		},
	}

	cmd.Flags().StringVarP(&target, "target", "t", "", "target language (en, zh-CN, zh-TW)")
	cmd.Flags().StringVarP(&source, "source", "s", "", "source language, detected when empty")
	cmd.Flags().BoolVar(&retries, "retries", false, "retry failed translations with backoff")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}

// retryable stops the loop once the controller gives up or the input is bad.
func retryable(err error) bool {
	var ctrlErr *chatclient.ControllerError
	if !errors.As(err, &ctrlErr) {
		return false
	}
	switch ctrlErr.Code {
	case chatclient.CodeMaxRetries, chatclient.CodeInvalidRequest, chatclient.CodeNotFound:
		return false
	}
	return true
}

func newHistoryCmd(a *app) *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "history <messageId>",
		Short: "List cached translations of a message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := a.client().History(cmd.Context(), args[0], target)
			if err != nil {
				return err
			}
			return printJSON(a.out, records)
		},
	}

	cmd.Flags().StringVarP(&target, "target", "t", "", "only show this target language")
	return cmd
}

func newPreferCmd(a *app) *cobra.Command {
	var (
		showOriginal bool
		target       string
	)

	cmd := &cobra.Command{
		Use:   "prefer <messageId>",
		Short: "Show or set the display preference for a message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.client()
			showChanged := cmd.Flags().Changed("show-original")
			targetChanged := cmd.Flags().Changed("target")
			if !showChanged || !targetChanged {
				current, err := c.GetPreference(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !showChanged && !targetChanged {
					return printJSON(a.out, current)
				}
				if current == nil {
					current = &chatclient.Preference{ShowOriginal: true}
				}
				// the endpoint replaces the whole preference, keep what was not asked to change
				if !showChanged {
					showOriginal = current.ShowOriginal
				}
				if !targetChanged && current.TargetLanguage != nil {
					target = *current.TargetLanguage
				}
			}
			pref, err := c.SetPreference(cmd.Context(), args[0], showOriginal, strings.TrimSpace(target))
			if err != nil {
				return err
			}
			return printJSON(a.out, pref)
		},
	}

	cmd.Flags().BoolVar(&showOriginal, "show-original", true, "show the original text next to the translation")
	cmd.Flags().StringVarP(&target, "target", "t", "", "preferred target language")
	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
