// Package cognito resolves tournament partners against an AWS Cognito user
// pool instead of the local users table.
package cognito

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/rs/zerolog/log"

	"github.com/codr1/courtbook/internal/models"
)

// ErrCognitoThrottled marks errors returned when Cognito throttles requests.
var ErrCognitoThrottled = errors.New("cognito throttling")

// ErrCognitoNotAuthorized marks errors returned when Cognito rejects credentials.
var ErrCognitoNotAuthorized = errors.New("cognito not authorized")

type adminGetUserAPI interface {
	AdminGetUser(ctx context.Context, params *cognitoidentityprovider.AdminGetUserInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminGetUserOutput, error)
}

// Directory looks users up by email, which the pool uses as username.
type Directory struct {
	client adminGetUserAPI
	poolID string
}

// NewDirectory creates a Cognito-backed directory for poolID.
// The region is extracted from the pool ID (format: "region_poolid").
func NewDirectory(ctx context.Context, poolID string) (*Directory, error) {
	region, err := regionFromPoolID(poolID)
	if err != nil {
		return nil, err
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &Directory{
		client: cognitoidentityprovider.NewFromConfig(awsCfg),
		poolID: poolID,
	}, nil
}

// LookupUser returns the pool user registered under email. Unknown or
// disabled users match models.ErrNotFound.
func (d *Directory) LookupUser(ctx context.Context, email string) (models.User, error) {
	out, err := d.client.AdminGetUser(ctx, &cognitoidentityprovider.AdminGetUserInput{
		UserPoolId: aws.String(d.poolID),
		Username:   aws.String(email),
	})
	if err != nil {
		err = mapCognitoError(err)
		if !errors.Is(err, models.ErrNotFound) {
			log.Ctx(ctx).Error().Err(err).Msg("Failed to look up Cognito user")
		}
		return models.User{}, err
	}
	if !out.Enabled {
		return models.User{}, fmt.Errorf("cognito user %s is disabled: %w", email, models.ErrNotFound)
	}

	user := models.User{Email: email}
	if out.UserCreateDate != nil {
		user.CreatedAt = out.UserCreateDate.UTC()
	}
	attrs := make(map[string]string, len(out.UserAttributes))
	for _, attr := range out.UserAttributes {
		attrs[aws.ToString(attr.Name)] = aws.ToString(attr.Value)
	}
	if value := attrs["email"]; value != "" {
		user.Email = strings.ToLower(value)
	}
	user.Name = displayName(attrs, user.Email)
	return user, nil
}

func displayName(attrs map[string]string, fallback string) string {
	if name := strings.TrimSpace(attrs["name"]); name != "" {
		return name
	}
	full := strings.TrimSpace(attrs["given_name"] + " " + attrs["family_name"])
	if full != "" {
		return full
	}
	return fallback
}

func mapCognitoError(err error) error {
	var notFound *types.UserNotFoundException
	if errors.As(err, &notFound) {
		return fmt.Errorf("%w: %v", models.ErrNotFound, err)
	}
	var throttled *types.TooManyRequestsException
	if errors.As(err, &throttled) {
		return fmt.Errorf("%w: %v", ErrCognitoThrottled, err)
	}
	var notAuthorized *types.NotAuthorizedException
	if errors.As(err, &notAuthorized) {
		return fmt.Errorf("%w: %v", ErrCognitoNotAuthorized, err)
	}
	return err
}

func regionFromPoolID(poolID string) (string, error) {
	parts := strings.SplitN(poolID, "_", 2)
	if len(parts) < 2 || parts[0] == "" {
		return "", fmt.Errorf("invalid cognito pool id: %q", poolID)
	}
	return parts[0], nil
}
