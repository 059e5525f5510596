package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jfmyers9/plexlint/internal/catalog"
	"github.com/jfmyers9/plexlint/internal/config"
	"github.com/jfmyers9/plexlint/pkg/plex"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to Plex and store a server token",
	Long: `Sign in with your plex.tv account and store a token for your server.

You will be prompted for:
1. The URL of your Plex Media Server, e.g. http://192.168.1.10:32400
2. Your plex.tv username or email
3. Your plex.tv password (not echoed)

The prompts repeat until the server accepts the credentials. The server URL
and token are then written to the config file; your password is never stored.`,
	RunE: runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	logger, _, closeLog := setupLogger(logFile, logLevel)
	defer closeLog()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Server.ClientID == "" {
		cfg.Server.ClientID = newClientID()
	}

	cat, err := login(cmd.Context(), cmd.InOrStdin(), cmd.ErrOrStderr(), cfg, logger)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Logged in to %s\n", cat.ServerName())
	fmt.Fprintf(cmd.OutOrStdout(), "Token saved to %s\n", cfg.Path())
	return nil
}

// credentials is one set of answers to the login prompts
type credentials struct {
	URL      string
	Username string
	Password string
}

// prompter asks for login credentials
type prompter struct {
	in     *bufio.Reader
	out    io.Writer
	secret func() (string, error)
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	p := &prompter{in: lineReader(in), out: out}

	// Read the password without echo when stdin is a terminal
	if f, ok := in.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		p.secret = func() (string, error) {
			b, err := term.ReadPassword(int(f.Fd()))
			fmt.Fprintln(out)
			return string(b), err
		}
	}
	return p
}

func (p *prompter) line(prompt string) (string, error) {
	for {
		fmt.Fprint(p.out, prompt)
		s, err := p.in.ReadString('\n')
		s = strings.TrimSpace(s)
		if s != "" {
			return s, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
	}
}

func (p *prompter) password(prompt string) (string, error) {
	if p.secret == nil {
		return p.line(prompt)
	}
	for {
		fmt.Fprint(p.out, prompt)
		s, err := p.secret()
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		if s != "" {
			return s, nil
		}
	}
}

func (p *prompter) ask() (credentials, error) {
	var c credentials
	var err error
	if c.URL, err = p.line("Plex server URL: "); err != nil {
		return c, err
	}
	if c.Username, err = p.line("Plex username: "); err != nil {
		return c, err
	}
	if c.Password, err = p.password("Plex password: "); err != nil {
		return c, err
	}
	return c, nil
}

// login prompts for credentials until a token is obtained and accepted by
// the server, then saves the URL and token into cfg.
func login(ctx context.Context, in io.Reader, out io.Writer, cfg *config.Config, logger zerolog.Logger) (*catalog.PlexCatalog, error) {
	p := newPrompter(in, out)

	for {
		creds, err := p.ask()
		if err != nil {
			return nil, err
		}

		cat, token, err := signIn(ctx, cfg, creds, logger)
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		if errors.Is(err, plex.ErrUnauthorized) {
			logger.Error().Err(err).Msg("Unauthorized error connecting to Plex, check your credentials")
			fmt.Fprintln(out, "Unauthorized, check your credentials and try again.")
			continue
		}
		if err != nil {
			logger.Error().Err(err).Str("url", creds.URL).Msg("Error connecting, check url")
			fmt.Fprintf(out, "Could not connect: %v\n", err)
			continue
		}

		cfg.Server.URL = creds.URL
		cfg.Server.Token = token
		if err := cfg.Save(); err != nil {
			return nil, fmt.Errorf("failed to save config: %w", err)
		}
		return cat, nil
	}
}

// signIn exchanges the account credentials for a token and connects to the
// server with it.
func signIn(ctx context.Context, cfg *config.Config, creds credentials, logger zerolog.Logger) (*catalog.PlexCatalog, string, error) {
	pc := plexConfig(cfg)
	pc.BaseURL = creds.URL
	pc.Token = ""
	pc.Logger = catalog.NewPlexLogger(logger)

	client, err := plex.NewClient(pc)
	if err != nil {
		return nil, "", err
	}

	account, err := client.Account().SignIn(ctx, creds.Username, creds.Password)
	if err != nil {
		return nil, "", err
	}

	pc.Token = account.AuthToken
	cat, err := catalog.Connect(ctx, pc, logger)
	if err != nil {
		return nil, "", err
	}
	return cat, account.AuthToken, nil
}

func newClientID() string {
	return uuid.NewString()
}
