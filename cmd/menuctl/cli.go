package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-menu-client/admin"
	"github.com/jrsteele09/go-menu-client/apiclient"
	"github.com/jrsteele09/go-menu-client/auth"
	"github.com/jrsteele09/go-menu-client/internal/config"
	"github.com/jrsteele09/go-menu-client/internal/metrics"
	"github.com/jrsteele09/go-menu-client/navigation"
	"github.com/jrsteele09/go-menu-client/publicmenu"
	"github.com/jrsteele09/go-menu-client/restaurants"
	"github.com/jrsteele09/go-menu-client/sessions"
	"github.com/jrsteele09/go-menu-client/storage"
	"github.com/jrsteele09/go-menu-client/storage/filestore"
	"github.com/jrsteele09/go-menu-client/storage/memory"
	"github.com/jrsteele09/go-menu-client/storage/redisstore"
)

// cli is one invocation with every service wired to the same session store and router.
type cli struct {
	out         io.Writer
	errOut      io.Writer
	closeStore  func() error
	sessions    *sessions.Store
	router      *navigation.Router
	client      *apiclient.Client
	auth        *auth.Service
	restaurants *restaurants.Service
	admin       *admin.Service
	public      *publicmenu.Service
}

func newCLI(ctx context.Context, cfg config.Config, out, errOut io.Writer, currentPath string, recorder metrics.Recorder) (*cli, error) {
	kv, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	store := sessions.NewStore(kv)

	router := navigation.NewRouter(currentPath)
	router.Subscribe(func(ev navigation.Event) {
		if ev.Reason != "" {
			fmt.Fprintf(errOut, "navigating to %s (%s)\n", ev.To, ev.Reason)
			return
		}
		fmt.Fprintf(errOut, "navigating to %s\n", ev.To)
	})

	client, err := apiclient.New(cfg.GetAPIURL(), store, store, router,
		apiclient.WithLogger(log.Logger),
		apiclient.WithRequestTimeout(cfg.GetRequestTimeout()),
		apiclient.WithRefreshTimeout(cfg.GetRefreshTimeout()),
		apiclient.WithRateLimit(cfg.GetRateLimit(), cfg.GetRateBurst()),
		apiclient.WithUserAgent(cfg.GetUserAgent()),
		apiclient.WithMetrics(recorder),
	)
	if err != nil {
		_ = closeStore()
		return nil, err
	}

	return &cli{
		out:         out,
		errOut:      errOut,
		closeStore:  closeStore,
		sessions:    store,
		router:      router,
		client:      client,
		auth:        auth.NewService(client, store),
		restaurants: restaurants.NewService(client),
		admin:       admin.NewService(client),
		public:      publicmenu.NewService(client),
	}, nil
}

// openStore returns the session backend selected by MENU_SESSION_BACKEND.
func openStore(ctx context.Context, cfg config.StorageConfig) (storage.Store, func() error, error) {
	noop := func() error { return nil }
	switch backend := strings.ToLower(cfg.GetSessionBackend()); backend {
	case config.SessionBackendFile:
		return filestore.New(cfg.GetSessionFile()), noop, nil
	case config.SessionBackendMemory:
		return memory.New(), noop, nil
	case config.SessionBackendRedis:
		s, err := redisstore.New(ctx, redisstore.Options{
			Addr:      cfg.GetRedisAddr(),
			Password:  cfg.GetRedisPassword(),
			DB:        cfg.GetRedisDB(),
			KeyPrefix: cfg.GetRedisKeyPrefix(),
		})
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown session backend %q", backend)
	}
}

func (c *cli) close() {
	if err := c.closeStore(); err != nil {
		log.Warn().Err(err).Msg("failed to close session store")
	}
}

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, c *cli, args []string) error
}

var commands []command

func init() {
	commands = []command{
		{"login", "sign in with -phone and optional -password", cmdLogin},
		{"set-password", "set the account password (-password, -confirm)", cmdSetPassword},
		{"register", "create an owner account (-phone, -password)", cmdRegister},
		{"logout", "revoke the refresh token and forget the session", cmdLogout},
		{"status", "show the stored session", cmdStatus},
		{"notice", "show and consume the pending subscription notice", cmdNotice},
		{"restaurants", "list|get|create|update|delete restaurants", cmdRestaurants},
		{"categories", "list|create|update|delete menu categories", cmdCategories},
		{"items", "list|create|update|availability|delete menu items", cmdItems},
		{"settings", "get|update restaurant settings", cmdSettings},
		{"qr", "list|create|delete|regenerate QR codes", cmdQR},
		{"upload", "upload an image (-file, -folder) or set a logo/item image", cmdUpload},
		{"admin-stats", "platform statistics", cmdAdminStats},
		{"admin-restaurant", "restaurant details as seen by an administrator", cmdAdminRestaurant},
		{"admin-renew", "renew a subscription (-id, -duration, -plan)", cmdAdminRenew},
		{"admin-cancel", "cancel a subscription (-id)", cmdAdminCancel},
		{"menu", "read the public menu for a QR -code", cmdMenu},
	}
	sort.Slice(commands, func(i, j int) bool { return commands[i].name < commands[j].name })
}

func (c *cli) dispatch(ctx context.Context, name string, args []string) error {
	for _, cmd := range commands {
		if cmd.name == name {
			return cmd.run(ctx, c, args)
		}
	}
	return fmt.Errorf("unknown command %q, run menuctl help", name)
}

func (c *cli) print(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.out, string(data))
	return err
}
