package gateway

import (
	"context"
	"fmt"

	"github.com/driftwatch/driftwatch/internal/models"
)

// Credentials is the resolved per-account credential material handed to a
// gateway driver. For assumed roles these are short-lived.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Region          string
}

// RoleAssumer exchanges a cross-account role for short-lived credentials.
type RoleAssumer interface {
	AssumeRole(ctx context.Context, roleARN, externalID string) (Credentials, error)
}

// ResolveCredentials turns a cloud account record into usable credentials.
// Accounts carry either a static key pair or a role to assume; missing fields
// and failed assumption surface as descriptive errors.
func ResolveCredentials(ctx context.Context, account models.CloudAccount, assumer RoleAssumer) (Credentials, error) {
	if account.DefaultRegion == "" {
		return Credentials{}, fmt.Errorf("cloud account %q has no default region", account.Name)
	}

	if account.RoleARN != "" {
		if assumer == nil {
			return Credentials{}, fmt.Errorf("cloud account %q requires role assumption but no role assumer is configured", account.Name)
		}

		creds, err := assumer.AssumeRole(ctx, account.RoleARN, account.ExternalID)
		if err != nil {
			return Credentials{}, fmt.Errorf("failed to assume role %s for cloud account %q: %w", account.RoleARN, account.Name, err)
		}

		if creds.Region == "" {
			creds.Region = account.DefaultRegion
		}

		return creds, nil
	}

	if account.AccessKeyID == "" {
		return Credentials{}, fmt.Errorf("cloud account %q is missing an access key id", account.Name)
	}

	if account.SecretAccessKey == "" {
		return Credentials{}, fmt.Errorf("cloud account %q is missing a secret access key", account.Name)
	}

	return Credentials{
		AccessKeyID:     account.AccessKeyID,
		SecretAccessKey: account.SecretAccessKey,
		Region:          account.DefaultRegion,
	}, nil
}
