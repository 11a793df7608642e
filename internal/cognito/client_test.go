package cognito

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codr1/courtbook/internal/models"
)

type fakeCognito struct {
	users map[string]*cognitoidentityprovider.AdminGetUserOutput
	err   error
	input *cognitoidentityprovider.AdminGetUserInput
}

func (f *fakeCognito) AdminGetUser(_ context.Context, params *cognitoidentityprovider.AdminGetUserInput, _ ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminGetUserOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	out, ok := f.users[aws.ToString(params.Username)]
	if !ok {
		return nil, &types.UserNotFoundException{Message: aws.String("User does not exist.")}
	}
	return out, nil
}

func attr(name, value string) types.AttributeType {
	return types.AttributeType{Name: aws.String(name), Value: aws.String(value)}
}

func TestLookupUser(t *testing.T) {
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	fake := &fakeCognito{users: map[string]*cognitoidentityprovider.AdminGetUserOutput{
		"ana@example.com": {
			Enabled:        true,
			UserCreateDate: &created,
			UserAttributes: []types.AttributeType{attr("email", "Ana@Example.com"), attr("name", "Ana Ruiz")},
		},
		"bo@example.com": {
			Enabled:        true,
			UserAttributes: []types.AttributeType{attr("given_name", "Bo"), attr("family_name", "Lind")},
		},
		"cy@example.com": {Enabled: true},
		"old@example.com": {
			Enabled:        false,
			UserAttributes: []types.AttributeType{attr("name", "Old")},
		},
	}}
	dir := &Directory{client: fake, poolID: "us-east-1_abc"}
	ctx := context.Background()

	user, err := dir.LookupUser(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.User{Email: "ana@example.com", Name: "Ana Ruiz", CreatedAt: created}, user)
	assert.Equal(t, "us-east-1_abc", aws.ToString(fake.input.UserPoolId))

	user, err = dir.LookupUser(ctx, "bo@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Bo Lind", user.Name)

	user, err = dir.LookupUser(ctx, "cy@example.com")
	require.NoError(t, err)
	assert.Equal(t, "cy@example.com", user.Name)

	_, err = dir.LookupUser(ctx, "old@example.com")
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = dir.LookupUser(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestLookupUserMapsThrottling(t *testing.T) {
	dir := &Directory{client: &fakeCognito{err: &types.TooManyRequestsException{Message: aws.String("slow down")}}, poolID: "us-east-1_abc"}

	_, err := dir.LookupUser(context.Background(), "ana@example.com")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCognitoThrottled))
	assert.False(t, errors.Is(err, models.ErrNotFound))
}

func TestRegionFromPoolID(t *testing.T) {
	region, err := regionFromPoolID("eu-west-1_AbCdEf")
	require.NoError(t, err)
	assert.Equal(t, "eu-west-1", region)

	_, err = regionFromPoolID("nopool")
	assert.Error(t, err)
}
