// Package auth verifies Firebase bearer tokens and exposes the identity
// operations behind the auth routes.
package auth

import (
	"context"
	"net/http"
	"sync"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/klipach/tutorguru/config"
)

var (
	mu     sync.Mutex
	client *auth.Client
)

// Client returns the shared Firebase auth client. A failed initialization is
// retried on the next call.
func Client(ctx context.Context) (*auth.Client, error) {
	mu.Lock()
	defer mu.Unlock()
	if client != nil {
		return client, nil
	}

	cfg, err := config.Get()
	if err != nil {
		return nil, err
	}

	var fbCfg *firebase.Config
	if cfg.FirebaseProjectID != "" {
		fbCfg = &firebase.Config{ProjectID: cfg.FirebaseProjectID}
	}
	var opts []option.ClientOption
	if cfg.FirebaseCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.FirebaseCredentialsFile))
	}

	app, err := firebase.NewApp(ctx, fbCfg, opts...)
	if err != nil {
		return nil, err
	}
	c, err := app.Auth(ctx)
	if err != nil {
		return nil, err
	}
	client = c
	return client, nil
}

// Authenticate verifies the request's bearer token.
func Authenticate(req *http.Request) (*auth.Token, error) {
	ctx := req.Context()

	jwtToken, err := BearerTokenFromRequest(req)
	if err != nil {
		return nil, err
	}

	c, err := Client(ctx)
	if err != nil {
		return nil, err
	}
	return c.VerifyIDToken(ctx, jwtToken)
}
