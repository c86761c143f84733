package clarisa

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"textmining/worker/internal/mining"
)

// Validation is the outcome of a credential check. Valid=false with a nil
// error means the credentials were rejected; an error means the check itself
// could not be performed.
type Validation struct {
	Valid               bool
	SenderName          string
	SenderEnvironment   string
	ReceiverEnvironment string
}

type mis struct {
	Code        int    `json:"code"`
	Acronym     string `json:"acronym"`
	Name        string `json:"name"`
	Environment string `json:"environment"`
}

type Service struct {
	client *Client
}

func NewService(client *Client) *Service {
	return &Service{client: client}
}

func (s *Service) Validate(ctx context.Context, clientID, secret string) (*Validation, error) {
	if clientID == "" || secret == "" {
		slog.WarnContext(ctx, "missing client credentials")
		return &Validation{}, nil
	}

	reply, err := s.client.Post(ctx, "app-secrets/validate", map[string]string{
		"client_id": clientID,
		"secret":    secret,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: clarisa validate: %v", mining.ErrExternalService, err)
	}

	if reply.Status < 200 || reply.Status >= 300 {
		slog.WarnContext(ctx, "credentials rejected", "client_id", clientID, "status", reply.Status)
		return &Validation{}, nil
	}

	var body struct {
		ClientID    string `json:"client_id"`
		SenderMis   mis    `json:"sender_mis"`
		ReceiverMis mis    `json:"receiver_mis"`
	}
	if err := json.Unmarshal(reply.Response, &body); err != nil {
		return nil, fmt.Errorf("%w: clarisa validate: decode response: %v", mining.ErrExternalService, err)
	}

	return &Validation{
		Valid:               true,
		SenderName:          body.SenderMis.Name,
		SenderEnvironment:   body.SenderMis.Environment,
		ReceiverEnvironment: body.ReceiverMis.Environment,
	}, nil
}
