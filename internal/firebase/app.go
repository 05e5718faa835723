package firebase

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	fb "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/bharatcyclehub/bch-admin/internal/config"
)

// App bundles the Admin SDK clients a command needs. It is built once in the
// entry point and handed to the services that use it.
type App struct {
	ProjectID string
	Auth      *auth.Client
	Firestore *firestore.Client
}

// New builds the Admin SDK app from service-account credentials.
func New(ctx context.Context, creds config.Credentials) (*App, error) {
	raw, err := creds.JSON()
	if err != nil {
		return nil, fmt.Errorf("encode credentials: %w", err)
	}

	app, err := fb.NewApp(ctx, &fb.Config{ProjectID: creds.ProjectID}, option.WithCredentialsJSON(raw))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("init auth client: %w", err)
	}

	fsClient, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firestore client: %w", err)
	}

	return &App{
		ProjectID: creds.ProjectID,
		Auth:      authClient,
		Firestore: fsClient,
	}, nil
}

func (a *App) Close() error {
	if a == nil || a.Firestore == nil {
		return nil
	}
	return a.Firestore.Close()
}
