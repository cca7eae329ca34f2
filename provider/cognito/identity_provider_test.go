package cognito_test

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/aws/smithy-go"
	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-todos"
	"github.com/goliatone/go-todos/provider/cognito"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) SignUp(ctx context.Context, params *cip.SignUpInput, _ ...func(*cip.Options)) (*cip.SignUpOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*cip.SignUpOutput)
	return out, args.Error(1)
}

func (m *MockAPI) InitiateAuth(ctx context.Context, params *cip.InitiateAuthInput, _ ...func(*cip.Options)) (*cip.InitiateAuthOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*cip.InitiateAuthOutput)
	return out, args.Error(1)
}

func (m *MockAPI) ConfirmSignUp(ctx context.Context, params *cip.ConfirmSignUpInput, _ ...func(*cip.Options)) (*cip.ConfirmSignUpOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*cip.ConfirmSignUpOutput)
	return out, args.Error(1)
}

var testConfig = cognito.Config{
	Region:     "us-west-2",
	UserPoolID: "us-west-2_test",
	ClientID:   "client-123",
}

func newProvider(t *testing.T, cfg cognito.Config, api *MockAPI) *cognito.IdentityProvider {
	t.Helper()
	p, err := cognito.NewIdentityProvider(cfg, api)
	require.NoError(t, err)
	return p
}

func unsignedIDToken(t *testing.T, name, username string) string {
	t.Helper()
	claims := &todos.IdentityClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "sub-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Name:            name,
		CognitoUsername: username,
		TokenUse:        "id",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("x"))
	require.NoError(t, err)
	return token
}

func TestNewIdentityProviderRequiresClientID(t *testing.T) {
	_, err := cognito.NewIdentityProvider(cognito.Config{}, &MockAPI{})
	assert.Error(t, err)

	_, err = cognito.NewIdentityProvider(testConfig, nil)
	assert.Error(t, err)
}

func TestSignUpSendsAttributes(t *testing.T) {
	api := &MockAPI{}
	api.On("SignUp", mock.Anything, mock.MatchedBy(func(in *cip.SignUpInput) bool {
		return aws.ToString(in.ClientId) == "client-123" &&
			aws.ToString(in.Username) == "ada@example.com" &&
			aws.ToString(in.Password) == "pw-123456" &&
			in.SecretHash == nil &&
			len(in.UserAttributes) == 2 &&
			aws.ToString(in.UserAttributes[0].Name) == "email" &&
			aws.ToString(in.UserAttributes[1].Value) == "Ada"
	})).Return(&cip.SignUpOutput{UserSub: aws.String("sub-1"), UserConfirmed: false}, nil).Once()

	res, err := newProvider(t, testConfig, api).SignUp(context.Background(), "ada@example.com", "pw-123456", []todos.Attribute{
		{Name: "email", Value: "ada@example.com"},
		{Name: "name", Value: "Ada"},
	})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", res.Username)
	assert.Equal(t, "sub-1", res.UserSub)
	assert.False(t, res.UserConfirmed)
	api.AssertExpectations(t)
}

func TestSignUpWithClientSecretSendsHash(t *testing.T) {
	cfg := testConfig
	cfg.ClientSecret = "shh"
	want := cfg.SecretHash("ada@example.com")
	require.NotEmpty(t, want)

	api := &MockAPI{}
	api.On("SignUp", mock.Anything, mock.MatchedBy(func(in *cip.SignUpInput) bool {
		return aws.ToString(in.SecretHash) == want
	})).Return(&cip.SignUpOutput{UserSub: aws.String("sub-1")}, nil).Once()

	_, err := newProvider(t, cfg, api).SignUp(context.Background(), "ada@example.com", "pw-123456", nil)
	require.NoError(t, err)
	api.AssertExpectations(t)
}

func TestAuthenticateReturnsAuthResult(t *testing.T) {
	idToken := unsignedIDToken(t, "Ada", "ada@example.com")

	api := &MockAPI{}
	api.On("InitiateAuth", mock.Anything, mock.MatchedBy(func(in *cip.InitiateAuthInput) bool {
		return in.AuthFlow == types.AuthFlowTypeUserPasswordAuth &&
			in.AuthParameters["USERNAME"] == "ada@example.com" &&
			in.AuthParameters["PASSWORD"] == "pw"
	})).Return(&cip.InitiateAuthOutput{
		AuthenticationResult: &types.AuthenticationResultType{
			IdToken:      aws.String(idToken),
			RefreshToken: aws.String("refresh"),
			ExpiresIn:    3600,
			TokenType:    aws.String("Bearer"),
		},
	}, nil).Once()

	res, err := newProvider(t, testConfig, api).Authenticate(context.Background(), "ada@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, idToken, res.IDToken.JWTToken)
	assert.Equal(t, "refresh", res.RefreshToken.Token)
	assert.Equal(t, int32(3600), res.ExpiresIn)

	claims, err := res.IdentityClaims()
	require.NoError(t, err)
	assert.Equal(t, "Ada", claims.Name)
	assert.Equal(t, "ada@example.com", claims.Username())
}

func TestAuthenticateChallengeIsError(t *testing.T) {
	api := &MockAPI{}
	api.On("InitiateAuth", mock.Anything, mock.Anything).Return(&cip.InitiateAuthOutput{
		ChallengeName: types.ChallengeNameTypeNewPasswordRequired,
	}, nil).Once()

	_, err := newProvider(t, testConfig, api).Authenticate(context.Background(), "ada@example.com", "pw")
	require.Error(t, err)
	assert.Equal(t, todos.ProviderErrorUnknown, todos.ProviderErrorKindOf(err))
	assert.Equal(t, "NEW_PASSWORD_REQUIRED", todos.AsProviderError(err).Code)
}

func TestConfirmRegistrationForcesAliasCreation(t *testing.T) {
	api := &MockAPI{}
	api.On("ConfirmSignUp", mock.Anything, mock.MatchedBy(func(in *cip.ConfirmSignUpInput) bool {
		return in.ForceAliasCreation &&
			aws.ToString(in.ConfirmationCode) == "123456" &&
			aws.ToString(in.Username) == "ada@example.com"
	})).Return(&cip.ConfirmSignUpOutput{}, nil).Once()

	require.NoError(t, newProvider(t, testConfig, api).ConfirmRegistration(context.Background(), "ada@example.com", "123456"))
	api.AssertExpectations(t)
}

func TestErrorsMapToProviderKinds(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected todos.ProviderErrorKind
	}{
		{"not authorized", &types.NotAuthorizedException{Message: aws.String("Incorrect username or password.")}, todos.ProviderErrorInvalidCredentials},
		{"user not found", &types.UserNotFoundException{}, todos.ProviderErrorInvalidCredentials},
		{"not confirmed", &types.UserNotConfirmedException{}, todos.ProviderErrorUserNotConfirmed},
		{"code mismatch", &types.CodeMismatchException{}, todos.ProviderErrorCodeMismatch},
		{"expired code", &types.ExpiredCodeException{}, todos.ProviderErrorCodeMismatch},
		{"username exists", &types.UsernameExistsException{}, todos.ProviderErrorUnknown},
		{"generic api error", &smithy.GenericAPIError{Code: "TooManyRequestsException"}, todos.ProviderErrorUnknown},
		{"network", &net.OpError{Op: "dial", Err: errors.New("connection refused")}, todos.ProviderErrorNetwork},
		{"deadline", context.DeadlineExceeded, todos.ProviderErrorNetwork},
		{"other", errors.New("boom"), todos.ProviderErrorUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &MockAPI{}
			api.On("ConfirmSignUp", mock.Anything, mock.Anything).Return(nil, tt.err).Once()

			err := newProvider(t, testConfig, api).ConfirmRegistration(context.Background(), "ada@example.com", "1")
			require.Error(t, err)

			perr := todos.AsProviderError(err)
			assert.Equal(t, tt.expected, perr.Kind)
			assert.NotEmpty(t, perr.Message)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestConfigDerivesIssuer(t *testing.T) {
	cfg := cognito.Config{UserPoolID: "eu-west-1_abc", ClientID: "c"}
	assert.Equal(t, "https://cognito-idp.eu-west-1.amazonaws.com/eu-west-1_abc", cfg.Issuer())
	assert.Equal(t, cfg.Issuer()+"/.well-known/jwks.json", cfg.JWKSURL())
	assert.Empty(t, cfg.SecretHash("ada"))
}
