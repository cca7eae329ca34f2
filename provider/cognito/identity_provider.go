package cognito

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/goliatone/go-todos"
)

// API is the subset of the Cognito client used by IdentityProvider
type API interface {
	SignUp(ctx context.Context, params *cip.SignUpInput, optFns ...func(*cip.Options)) (*cip.SignUpOutput, error)
	InitiateAuth(ctx context.Context, params *cip.InitiateAuthInput, optFns ...func(*cip.Options)) (*cip.InitiateAuthOutput, error)
	ConfirmSignUp(ctx context.Context, params *cip.ConfirmSignUpInput, optFns ...func(*cip.Options)) (*cip.ConfirmSignUpOutput, error)
}

var _ todos.IdentityProvider = (*IdentityProvider)(nil)

// IdentityProvider implements todos.IdentityProvider backed by Cognito.
type IdentityProvider struct {
	config Config
	client API
	logger todos.Logger
}

// ProviderOption customizes the identity provider
type ProviderOption func(*IdentityProvider)

// WithLogger overrides the logger
func WithLogger(logger todos.Logger) ProviderOption {
	return func(p *IdentityProvider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewIdentityProvider wraps an existing Cognito client
func NewIdentityProvider(cfg Config, client API, opts ...ProviderOption) (*IdentityProvider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if client == nil {
		return nil, fmt.Errorf("cognito: client is required")
	}

	p := &IdentityProvider{
		config: cfg,
		client: client,
		logger: todos.NopLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p, nil
}

// NewClient builds a Cognito client from the default AWS credential chain.
// Sign-up, sign-in and confirmation are public app client calls, so no
// credentials are needed for them.
func NewClient(ctx context.Context, cfg Config) (*cip.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if region := cfg.region(); region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("cognito: failed to load aws config: %w", err)
	}

	return cip.NewFromConfig(awsCfg, func(o *cip.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}

// SignUp implements todos.IdentityProvider.
func (p *IdentityProvider) SignUp(ctx context.Context, username, password string, attributes []todos.Attribute) (*todos.SignUpResult, error) {
	input := &cip.SignUpInput{
		ClientId:       aws.String(p.config.ClientID),
		Username:       aws.String(username),
		Password:       aws.String(password),
		UserAttributes: toAttributeTypes(attributes),
	}
	if hash := p.config.SecretHash(username); hash != "" {
		input.SecretHash = aws.String(hash)
	}

	out, err := p.client.SignUp(ctx, input)
	if err != nil {
		return nil, mapError(err)
	}

	p.logger.Debug("cognito sign up", "username", username, "confirmed", out.UserConfirmed)

	return &todos.SignUpResult{
		Username:      username,
		UserSub:       aws.ToString(out.UserSub),
		UserConfirmed: out.UserConfirmed,
	}, nil
}

// Authenticate implements todos.IdentityProvider using USER_PASSWORD_AUTH.
// Challenges are not supported and are reported as errors.
func (p *IdentityProvider) Authenticate(ctx context.Context, username, password string) (*todos.AuthResult, error) {
	params := map[string]string{
		"USERNAME": username,
		"PASSWORD": password,
	}
	if hash := p.config.SecretHash(username); hash != "" {
		params["SECRET_HASH"] = hash
	}

	out, err := p.client.InitiateAuth(ctx, &cip.InitiateAuthInput{
		AuthFlow:       types.AuthFlowTypeUserPasswordAuth,
		ClientId:       aws.String(p.config.ClientID),
		AuthParameters: params,
	})
	if err != nil {
		return nil, mapError(err)
	}

	if out.ChallengeName != "" {
		return nil, todos.NewProviderError(
			todos.ProviderErrorUnknown,
			string(out.ChallengeName),
			fmt.Sprintf("unsupported authentication challenge %s", out.ChallengeName),
			nil,
		)
	}

	ar := out.AuthenticationResult
	if ar == nil || aws.ToString(ar.IdToken) == "" {
		return nil, todos.NewProviderError(todos.ProviderErrorUnknown, "", "cognito returned no authentication result", nil)
	}

	result, err := todos.NewAuthResult(aws.ToString(ar.IdToken), aws.ToString(ar.AccessToken), aws.ToString(ar.RefreshToken))
	if err != nil {
		return nil, todos.NewProviderError(todos.ProviderErrorUnknown, "", "", err)
	}
	result.ExpiresIn = ar.ExpiresIn
	result.TokenType = aws.ToString(ar.TokenType)

	return result, nil
}

// ConfirmRegistration implements todos.IdentityProvider.
func (p *IdentityProvider) ConfirmRegistration(ctx context.Context, username, code string) error {
	input := &cip.ConfirmSignUpInput{
		ClientId:           aws.String(p.config.ClientID),
		Username:           aws.String(username),
		ConfirmationCode:   aws.String(code),
		ForceAliasCreation: true,
	}
	if hash := p.config.SecretHash(username); hash != "" {
		input.SecretHash = aws.String(hash)
	}

	if _, err := p.client.ConfirmSignUp(ctx, input); err != nil {
		return mapError(err)
	}
	return nil
}

func toAttributeTypes(attributes []todos.Attribute) []types.AttributeType {
	out := make([]types.AttributeType, 0, len(attributes))
	for _, attr := range attributes {
		out = append(out, types.AttributeType{
			Name:  aws.String(attr.Name),
			Value: aws.String(attr.Value),
		})
	}
	return out
}
