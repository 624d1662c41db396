package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/pfrederiksen/rec-schedule/internal/preferences"
)

func newPrefsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change saved preferences",
	}
	cmd.AddCommand(newThemeCmd(opts), newKeyCmd(opts))
	return cmd
}

func newThemeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "theme [auto|light|dark]",
		Short: "Show or set the display theme",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prefs := opts.app.Preferences
			if len(args) == 0 {
				theme, err := prefs.Theme()
				if err != nil {
					return err
				}
				fmt.Fprintln(opts.out, theme)
				return nil
			}

			theme, err := preferences.ParseTheme(args[0])
			if err != nil {
				return err
			}
			if err := prefs.SetTheme(theme); err != nil {
				return err
			}
			fmt.Fprintf(opts.out, "Theme set to %s\n", theme)
			return nil
		},
	}
}

func newKeyCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage the saved routing API key",
		Long: `Manage the saved routing API key.
When REC_SCHEDULE_PASSPHRASE is set the key is encrypted at rest.`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show the saved key, masked",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				key, err := opts.app.Preferences.RoutingKey()
				if err != nil {
					return err
				}
				fmt.Fprintln(opts.out, preferences.MaskKey(key))
				return nil
			},
		},
		&cobra.Command{
			Use:   "set",
			Short: "Save a routing API key read from the terminal or stdin",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				key, err := readSecret(cmd.InOrStdin(), cmd.ErrOrStderr(), "Routing API key: ")
				if err != nil {
					return err
				}
				if key == "" {
					return errors.New("no key entered")
				}
				if err := opts.app.Preferences.SetRoutingKey(key); err != nil {
					return err
				}
				sealed := "unencrypted"
				if opts.cfg.Passphrase != "" {
					sealed = "encrypted"
				}
				fmt.Fprintf(opts.out, "Routing key %s saved (%s)\n", preferences.MaskKey(key), sealed)
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove the saved key",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := opts.app.Preferences.ClearRoutingKey(); err != nil {
					return err
				}
				fmt.Fprintln(opts.out, "Routing key cleared")
				return nil
			},
		},
	)
	return cmd
}

// readSecret reads one line without echo when in is a terminal, or plainly otherwise.
func readSecret(in io.Reader, prompt io.Writer, label string) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, label)
		secret, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("reading key: %w", err)
		}
		return strings.TrimSpace(string(secret)), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading key: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func newCacheCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the distance cache",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show the cached distance origin and age",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				entry := opts.app.GeoCache.Get()
				if opts.output == FormatJSON {
					return writeJSON(opts.out, entry)
				}
				if entry == nil {
					fmt.Fprintln(opts.out, "Distance cache is empty")
					return nil
				}
				kind := "routed"
				if entry.Estimated {
					kind = "estimated"
				}
				fmt.Fprintf(opts.out, "Origin: %s\nComputed: %s (%s ago)\nFacilities: %d (%s)\n",
					entry.Origin, entry.Timestamp.Format(time.RFC3339),
					time.Since(entry.Timestamp).Round(time.Second), len(entry.Centers), kind)
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Forget cached distances",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := opts.app.GeoCache.Clear(); err != nil {
					return err
				}
				fmt.Fprintln(opts.out, "Distance cache cleared")
				return nil
			},
		},
	)
	return cmd
}
