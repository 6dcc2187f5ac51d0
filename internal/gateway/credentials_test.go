package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftwatch/driftwatch/internal/models"
)

type fakeAssumer struct {
	creds Credentials
	err   error

	roleARN    string
	externalID string
}

func (a *fakeAssumer) AssumeRole(ctx context.Context, roleARN, externalID string) (Credentials, error) {
	a.roleARN = roleARN
	a.externalID = externalID
	return a.creds, a.err
}

func staticAccount() models.CloudAccount {
	return models.CloudAccount{
		Name:            "prod",
		DefaultRegion:   "us-east-1",
		AccessKeyID:     "AKIA123",
		SecretAccessKey: "secret",
	}
}

func TestResolveCredentialsStaticKeys(t *testing.T) {
	creds, err := ResolveCredentials(context.Background(), staticAccount(), nil)

	require.NoError(t, err)
	assert.Equal(t, "AKIA123", creds.AccessKeyID)
	assert.Equal(t, "secret", creds.SecretAccessKey)
	assert.Equal(t, "us-east-1", creds.Region)
	assert.Empty(t, creds.SessionToken)
}

func TestResolveCredentialsMissingRegion(t *testing.T) {
	account := staticAccount()
	account.DefaultRegion = ""

	_, err := ResolveCredentials(context.Background(), account, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no default region")
}

func TestResolveCredentialsMissingKeyPair(t *testing.T) {
	account := staticAccount()
	account.AccessKeyID = ""

	_, err := ResolveCredentials(context.Background(), account, nil)
	require.Error(t, err)

	account = staticAccount()
	account.SecretAccessKey = ""

	_, err = ResolveCredentials(context.Background(), account, nil)
	require.Error(t, err)
}

func TestResolveCredentialsAssumesRole(t *testing.T) {
	account := staticAccount()
	account.RoleARN = "arn:aws:iam::123456789012:role/driftwatch-readonly"
	account.ExternalID = "ext-42"

	assumer := &fakeAssumer{creds: Credentials{
		AccessKeyID:     "ASIA456",
		SecretAccessKey: "temp",
		SessionToken:    "token",
	}}

	creds, err := ResolveCredentials(context.Background(), account, assumer)

	require.NoError(t, err)
	assert.Equal(t, account.RoleARN, assumer.roleARN)
	assert.Equal(t, "ext-42", assumer.externalID)
	assert.Equal(t, "ASIA456", creds.AccessKeyID)
	assert.Equal(t, "token", creds.SessionToken)

	// The account's default region backfills when the assumer leaves it empty.
	assert.Equal(t, "us-east-1", creds.Region)
}

func TestResolveCredentialsRoleWithoutAssumer(t *testing.T) {
	account := staticAccount()
	account.RoleARN = "arn:aws:iam::123456789012:role/driftwatch-readonly"

	_, err := ResolveCredentials(context.Background(), account, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no role assumer")
}

func TestResolveCredentialsAssumptionFailure(t *testing.T) {
	account := staticAccount()
	account.RoleARN = "arn:aws:iam::123456789012:role/driftwatch-readonly"

	assumer := &fakeAssumer{err: errors.New("access denied")}

	_, err := ResolveCredentials(context.Background(), account, assumer)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}
