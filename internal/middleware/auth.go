package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"textmining/worker/internal/adapter/clarisa"
	"textmining/worker/internal/adapter/slack"
	"textmining/worker/internal/mining"
)

// Identity is the resolved caller attached to an authenticated request.
type Identity struct {
	Name        string
	Environment string
}

type CredentialValidator interface {
	Validate(ctx context.Context, clientID, secret string) (*clarisa.Validation, error)
}

type Notifier interface {
	Notify(ctx context.Context, priority, title, message string) error
}

// Gate authenticates inbound requests before they reach the pipeline. It
// never lets a request through on a validation error: invalid credentials and
// internal failures both short-circuit, differing only in alert priority.
type Gate struct {
	validator   CredentialValidator
	notifier    Notifier
	serviceName string
}

func NewGate(validator CredentialValidator, notifier Notifier, serviceName string) *Gate {
	return &Gate{validator: validator, notifier: notifier, serviceName: serviceName}
}

// Authenticate checks the request's JSON-encoded credentials and returns the
// resolved identity. The returned error wraps ErrAuthenticationFailed on
// every rejection path.
func (g *Gate) Authenticate(ctx context.Context, credentials string) (*Identity, error) {
	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.Unmarshal([]byte(credentials), &creds); err != nil {
		g.alert(ctx, slack.PriorityMedium, "Invalid credentials",
			fmt.Sprintf("A caller sent malformed credentials to %s", g.serviceName))
		return nil, fmt.Errorf("%w: malformed credentials", mining.ErrAuthenticationFailed)
	}

	slog.DebugContext(ctx, "validating credentials", "client", creds.Username, "service", g.serviceName)

	validation, err := g.validator.Validate(ctx, creds.Username, creds.Password)
	if err != nil {
		slog.ErrorContext(ctx, "authentication error", "client", creds.Username, "error", err)
		g.alert(ctx, slack.PriorityHigh, "Authentication Error",
			fmt.Sprintf("Error during authentication process: %v", err))
		return nil, fmt.Errorf("%w: %v", mining.ErrAuthenticationFailed, err)
	}

	if !validation.Valid {
		slog.WarnContext(ctx, "authentication rejected", "client", creds.Username)
		g.alert(ctx, slack.PriorityMedium, "Invalid credentials",
			fmt.Sprintf("User %s tried to access %s with invalid credentials", creds.Username, g.serviceName))
		return nil, fmt.Errorf("%w: invalid credentials for %s", mining.ErrAuthenticationFailed, creds.Username)
	}

	slog.InfoContext(ctx, "caller authorized",
		"client", validation.SenderName,
		"environment", validation.SenderEnvironment,
		"service", g.serviceName)

	return &Identity{
		Name:        validation.SenderName,
		Environment: validation.SenderEnvironment,
	}, nil
}

func (g *Gate) alert(ctx context.Context, priority, title, message string) {
	if err := g.notifier.Notify(ctx, priority, title, message); err != nil {
		slog.ErrorContext(ctx, "failed to send notification", "title", title, "error", err)
	}
}
