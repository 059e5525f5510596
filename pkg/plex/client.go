package plex

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Config holds client configuration.
type Config struct {
	BaseURL          string       // Required: Plex Media Server URL, e.g. http://host:32400
	Token            string       // Optional: X-Plex-Token for authenticated requests
	ClientIdentifier string       // Optional: stable client id (defaults to a random UUID)
	Product          string       // Optional: product name sent in X-Plex-Product
	HTTPClient       *http.Client // Optional: HTTP client (defaults to a client with a 30s timeout)
	AccountURL       string       // Optional: plex.tv base URL (used for testing)
	Logger           Logger       // Optional: Logger interface for debug logging
}

// Logger is an optional interface for logging.
type Logger interface {
	// Debugf logs a debug message with format and arguments.
	Debugf(format string, args ...interface{})
}

// Client is the main entry point for Plex API operations.
type Client struct {
	baseURL    string
	token      string
	clientID   string
	product    string
	httpClient *http.Client
	accountURL string
	logger     Logger

	library *LibraryService
	account *AccountService
}

const (
	// DefaultAccountURL is the plex.tv endpoint used for sign-in.
	DefaultAccountURL = "https://plex.tv"

	// DefaultProduct is sent as X-Plex-Product when none is configured.
	DefaultProduct = "plexlint"

	// ProductVersion is sent as X-Plex-Version.
	ProductVersion = "1.0.0"

	defaultTimeout = 30 * time.Second
)

// NewClient creates a new Plex API client.
//
// Returns an error if BaseURL is missing.
func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("plex: BaseURL is required: %w", ErrInvalidConfig)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	accountURL := strings.TrimRight(cfg.AccountURL, "/")
	if accountURL == "" {
		accountURL = DefaultAccountURL
	}

	clientID := strings.TrimSpace(cfg.ClientIdentifier)
	if clientID == "" {
		clientID = uuid.NewString()
	}

	product := cfg.Product
	if product == "" {
		product = DefaultProduct
	}

	c := &Client{
		baseURL:    baseURL,
		token:      strings.TrimSpace(cfg.Token),
		clientID:   clientID,
		product:    product,
		httpClient: httpClient,
		accountURL: accountURL,
		logger:     cfg.Logger,
	}

	c.library = &LibraryService{client: c, pageSize: defaultPageSize}
	c.account = &AccountService{client: c}

	return c, nil
}

// Library returns the library browsing service.
func (c *Client) Library() *LibraryService {
	return c.library
}

// Account returns the plex.tv account service.
func (c *Client) Account() *AccountService {
	return c.account
}

// SetToken sets the token used for authenticated requests.
func (c *Client) SetToken(token string) {
	c.token = strings.TrimSpace(token)
}

// Token returns the current token.
func (c *Client) Token() string {
	return c.token
}

// BaseURL returns the server URL the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ClientIdentifier returns the X-Plex-Client-Identifier sent with every request.
func (c *Client) ClientIdentifier() string {
	return c.clientID
}

// logDebugf logs a debug message if a logger is configured.
func (c *Client) logDebugf(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debugf(format, args...)
	}
}
