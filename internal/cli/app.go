package cli

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/dkurov/campdir/internal/auth"
	"github.com/dkurov/campdir/internal/config"
	"github.com/dkurov/campdir/internal/directory"
	"github.com/dkurov/campdir/internal/flow"
	"github.com/dkurov/campdir/internal/graphql"
	"github.com/dkurov/campdir/internal/idp"
	"github.com/dkurov/campdir/internal/logging"
)

type App struct {
	config    *config.Config
	log       logging.Logger
	auth      *auth.Service
	flow      *flow.Controller
	directory *directory.Service
	reader    *bufio.Reader
}

// NewApp wires the Cognito provider, session manager, request client,
// directory service, and flow controller from the given config.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	provider, err := idp.NewCognitoProvider(ctx, cfg.AWSRegion, cfg.CognitoClientID, log)
	if err != nil {
		return nil, err
	}

	authService := auth.NewService(provider, log)
	api := graphql.NewClient(cfg.GraphQLEndpoint, provider, &http.Client{Timeout: cfg.RequestTimeout}, log)

	return &App{
		config:    cfg,
		log:       log,
		auth:      authService,
		flow:      flow.NewController(authService, log),
		directory: directory.NewService(api, cfg.ListCacheTTL, log),
		reader:    bufio.NewReader(os.Stdin),
	}, nil
}

// Run restores the previous session, then hands control to the REPL.
// The restore completes before the first prompt is shown, so no command ever
// observes an unresolved session.
func (a *App) Run(ctx context.Context) {
	a.auth.Restore(ctx)

	if u, ok := a.auth.User(); ok {
		fmt.Printf("Welcome back, %s!\n", u.Username)
	}
	fmt.Println("campdir CLI (type 'help' for commands)")

	runREPL(ctx, a, a.status, bufio.NewScanner(os.Stdin))
}

func (a *App) isSignedIn() bool {
	return a.auth.IsAuthenticated()
}

// status renders the prompt decoration: the signed-in username and any
// flow step waiting on the user.
func (a *App) status() string {
	s := ""
	if u, ok := a.auth.User(); ok {
		s = u.Username
	}
	if a.flow.RegistrationStep() == flow.RegStepAwaitingConfirmation {
		s += " confirm?"
	}
	if a.flow.PasswordResetStep() == flow.ResetStepReset {
		s += " reset?"
	}
	if s = strings.TrimSpace(s); s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}
