package auth

import (
	"context"

	"firebase.google.com/go/v4/auth"
)

// Identity manages Firebase accounts for the signup and login routes.
type Identity struct {
	client *auth.Client
}

func NewIdentity(ctx context.Context) (*Identity, error) {
	c, err := Client(ctx)
	if err != nil {
		return nil, err
	}
	return &Identity{client: c}, nil
}

func (i *Identity) CreateUser(ctx context.Context, email, password, displayName string) (*auth.UserRecord, error) {
	params := (&auth.UserToCreate{}).
		Email(email).
		Password(password).
		Disabled(false)
	if displayName != "" {
		params = params.DisplayName(displayName)
	}
	return i.client.CreateUser(ctx, params)
}

func (i *Identity) UserByEmail(ctx context.Context, email string) (*auth.UserRecord, error) {
	return i.client.GetUserByEmail(ctx, email)
}

// CustomToken mints a token the client exchanges for an ID token via the
// Firebase REST API. The admin SDK cannot verify passwords itself.
func (i *Identity) CustomToken(ctx context.Context, uid string) (string, error) {
	return i.client.CustomToken(ctx, uid)
}

func (i *Identity) PasswordResetLink(ctx context.Context, email string) error {
	_, err := i.client.PasswordResetLink(ctx, email)
	return err
}

func (i *Identity) UpdateDisplayName(ctx context.Context, uid, displayName string) error {
	_, err := i.client.UpdateUser(ctx, uid, (&auth.UserToUpdate{}).DisplayName(displayName))
	return err
}

func (i *Identity) VerifyToken(ctx context.Context, idToken string) (*auth.Token, error) {
	return i.client.VerifyIDToken(ctx, idToken)
}
