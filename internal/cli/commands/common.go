package commands

import (
	"fmt"
	"io"
	"os"
	"syscall"

	"golang.org/x/term"

	"github.com/genlink-dev/genlink/internal/cli/api"
	"github.com/genlink-dev/genlink/internal/cli/auth"
	"github.com/genlink-dev/genlink/internal/cli/guard"
	"github.com/genlink-dev/genlink/internal/cli/session"
	"github.com/genlink-dev/genlink/internal/cli/userconfig"
	"github.com/genlink-dev/genlink/internal/config"
	"github.com/genlink-dev/genlink/internal/logger"
)

const defaultAPIURL = "https://api.genlink.pl"

// tokenStore is the session store surface the commands need
type tokenStore interface {
	auth.TokenStore
	PreferredPersistence() session.Persistence
}

// runtime bundles the dependencies a command needs. Tests inject their
// own pieces through options; production commands build the real ones.
type runtime struct {
	client  *api.Client
	store   tokenStore
	manager *auth.Manager
	out     io.Writer
	prompt  func(label string) (string, error)
}

type option func(*runtime)

func withClient(c *api.Client) option {
	return func(rt *runtime) { rt.client = c }
}

func withStore(s tokenStore) option {
	return func(rt *runtime) { rt.store = s }
}

func withOutput(w io.Writer) option {
	return func(rt *runtime) { rt.out = w }
}

func withPasswordPrompt(fn func(label string) (string, error)) option {
	return func(rt *runtime) { rt.prompt = fn }
}

func newRuntime(opts ...option) (*runtime, error) {
	rt := &runtime{
		out:    os.Stdout,
		prompt: promptPassword,
	}
	for _, opt := range opts {
		opt(rt)
	}

	if rt.client == nil {
		baseURL, err := resolveAPIURL()
		if err != nil {
			return nil, err
		}
		rt.client = api.New(baseURL, logger.GetLogger())
	}
	if rt.store == nil {
		rt.store = session.New(rt.client.BaseURL())
	}
	rt.manager = auth.NewManager(rt.store, rt.client, logger.GetLogger())
	rt.manager.SetRequiresProfile(guard.DefaultPolicy().RequiresProfile)

	return rt, nil
}

// resolveAPIURL picks the API endpoint: environment (including .env files,
// via config.Load) first, then the saved user config, then the public
// default.
func resolveAPIURL() (string, error) {
	cfg, err := config.Load()
	if err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.API.BaseURL != "" {
		return cfg.API.BaseURL, nil
	}

	ucfg, err := userconfig.Load()
	if err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}
	if ucfg.APIURL != "" {
		return ucfg.APIURL, nil
	}

	return defaultAPIURL, nil
}

// promptPassword reads a password without echo when stdin is a terminal
func promptPassword(label string) (string, error) {
	if !term.IsTerminal(int(syscall.Stdin)) {
		return "", fmt.Errorf("password is required in non-interactive mode (use --password flag or GENLINK_PASSWORD env var)")
	}

	fmt.Print(label)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Println()

	return string(bytePassword), nil
}

// printValidationError renders field errors the way the API reports them
func printValidationError(w io.Writer, verr *api.ValidationError) {
	fmt.Fprintln(w, "Validation failed:")
	for _, fe := range verr.Fields {
		fmt.Fprintf(w, "  %s: %s\n", fe.Field(), fe.Msg)
	}
}
