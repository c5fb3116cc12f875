// Package identity talks to AWS IAM on behalf of whichever access key is
// currently the ambient credential. Each Client is bound to one key pair at
// construction; switching identity context means building a new Client, not
// mutating process-wide credential state.
package identity

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	kerrors "github.com/systmms/keyrotate/internal/errors"
	"github.com/systmms/keyrotate/internal/logging"
	"github.com/systmms/keyrotate/internal/secure"
	"github.com/systmms/keyrotate/pkg/keys"
)

// Provider is the identity-provider contract consumed by the rotation
// orchestrator. The current identity is implied by the credentials the
// provider was built from.
type Provider interface {
	// Validate confirms the credentials authenticate at all.
	Validate(ctx context.Context) error

	// ListKeys returns the IDs of every access key on the identity.
	ListKeys(ctx context.Context) ([]string, error)

	// CreateKey mints a new access key for the identity.
	CreateKey(ctx context.Context) (*keys.AccessKey, error)

	// DeleteKey removes an access key by ID.
	DeleteKey(ctx context.Context, id string) error
}

// iamAPI is the slice of the IAM client the Client uses, extracted so tests
// can fake the SDK.
type iamAPI interface {
	ListAccessKeys(ctx context.Context, params *iam.ListAccessKeysInput, optFns ...func(*iam.Options)) (*iam.ListAccessKeysOutput, error)
	CreateAccessKey(ctx context.Context, params *iam.CreateAccessKeyInput, optFns ...func(*iam.Options)) (*iam.CreateAccessKeyOutput, error)
	DeleteAccessKey(ctx context.Context, params *iam.DeleteAccessKeyInput, optFns ...func(*iam.Options)) (*iam.DeleteAccessKeyOutput, error)
}

type stsAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// Client implements Provider over the AWS SDK. The secret half of the bound
// key pair lives in a protected buffer until the SDK clients are built.
type Client struct {
	keyID  string
	secret *secure.Buffer
	region string
	logger *logging.Logger

	mu  sync.Mutex
	iam iamAPI
	sts stsAPI
}

// New binds a client to the given key pair. No network calls are made until
// the first operation.
func New(active keys.AccessKey, region string, logger *logging.Logger) *Client {
	return &Client{
		keyID:  active.ID,
		secret: secure.NewBuffer(active.Secret),
		region: region,
		logger: logger,
	}
}

// KeyID returns the access key ID this client authenticates with.
func (c *Client) KeyID() string {
	return c.keyID
}

// ensureClients builds the IAM and STS clients on first use, revealing the
// secret only for the duration of config construction.
func (c *Client) ensureClients(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.iam != nil {
		return nil
	}

	secret, err := c.secret.Reveal()
	if err != nil {
		return fmt.Errorf("failed to unseal credentials: %w", err)
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.keyID, secret, ""),
		),
	}
	if c.region != "" {
		opts = append(opts, awsconfig.WithRegion(c.region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to load AWS config: %w", err)
	}

	c.iam = iam.NewFromConfig(cfg)
	c.sts = sts.NewFromConfig(cfg)
	return nil
}

// Validate checks the bound credentials with sts:GetCallerIdentity.
func (c *Client) Validate(ctx context.Context) error {
	if err := c.ensureClients(ctx); err != nil {
		return err
	}

	out, err := c.sts.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return kerrors.UserError{
			Message:    fmt.Sprintf("Failed to authenticate with access key %s", keys.Mask(c.keyID)),
			Details:    err.Error(),
			Suggestion: errorSuggestion(err),
			Err:        err,
		}
	}

	if out.Arn != nil {
		c.logger.Debug("Authenticated as %s", *out.Arn)
	}
	return nil
}

// ListKeys lists the access key IDs on the calling identity.
func (c *Client) ListKeys(ctx context.Context) ([]string, error) {
	if err := c.ensureClients(ctx); err != nil {
		return nil, err
	}

	var ids []string
	input := &iam.ListAccessKeysInput{}
	for {
		out, err := c.iam.ListAccessKeys(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to list access keys: %w", err)
		}
		for _, md := range out.AccessKeyMetadata {
			if md.AccessKeyId != nil {
				ids = append(ids, *md.AccessKeyId)
			}
		}
		if out.IsTruncated && out.Marker != nil {
			input.Marker = out.Marker
			continue
		}
		return ids, nil
	}
}

// CreateKey mints a new access key for the calling identity.
func (c *Client) CreateKey(ctx context.Context) (*keys.AccessKey, error) {
	if err := c.ensureClients(ctx); err != nil {
		return nil, err
	}

	out, err := c.iam.CreateAccessKey(ctx, &iam.CreateAccessKeyInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to create access key: %w", err)
	}
	if out.AccessKey == nil || out.AccessKey.AccessKeyId == nil || out.AccessKey.SecretAccessKey == nil {
		return nil, fmt.Errorf("provider returned an incomplete key pair")
	}

	return &keys.AccessKey{
		ID:     *out.AccessKey.AccessKeyId,
		Secret: *out.AccessKey.SecretAccessKey,
	}, nil
}

// DeleteKey removes an access key from the calling identity.
func (c *Client) DeleteKey(ctx context.Context, id string) error {
	if err := c.ensureClients(ctx); err != nil {
		return err
	}

	_, err := c.iam.DeleteAccessKey(ctx, &iam.DeleteAccessKeyInput{
		AccessKeyId: aws.String(id),
	})
	if err != nil {
		return fmt.Errorf("failed to delete access key %s: %w", id, err)
	}
	return nil
}

// Close wipes the protected secret. The client is unusable afterwards
// unless the SDK clients were already built.
func (c *Client) Close() {
	c.secret.Destroy()
}

// errorSuggestion maps common IAM/STS failures to actionable advice.
func errorSuggestion(err error) string {
	errStr := err.Error()

	switch {
	case strings.Contains(errStr, "InvalidClientTokenId"), strings.Contains(errStr, "SignatureDoesNotMatch"):
		return "The stored key pair is invalid or was already rotated elsewhere; check the profile's credentials"
	case strings.Contains(errStr, "AccessDenied"):
		return "Check IAM permissions for iam:ListAccessKeys, iam:CreateAccessKey and iam:DeleteAccessKey"
	case strings.Contains(errStr, "LimitExceeded"):
		return "The identity already has the maximum number of access keys; delete one and retry"
	case strings.Contains(errStr, "Throttling"):
		return "AWS rate limit exceeded. Wait a moment and try again"
	case strings.Contains(errStr, "ExpiredToken"):
		return "The credentials have expired"
	default:
		return "Check AWS credentials and IAM permissions"
	}
}
