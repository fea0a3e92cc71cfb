package config

import (
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// LoadSSMParameters reads every parameter under parameterPath from AWS SSM Parameter Store.
// Keys are the last path segment, so /portfolio/prod/RESEND_API_KEY becomes RESEND_API_KEY.
func LoadSSMParameters(ctx context.Context, parameterPath string) (map[string]string, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return fetchParameters(ctx, ssm.NewFromConfig(awsCfg), parameterPath)
}

func fetchParameters(ctx context.Context, client ssm.GetParametersByPathAPIClient, parameterPath string) (map[string]string, error) {
	paginator := ssm.NewGetParametersByPathPaginator(client, &ssm.GetParametersByPathInput{
		Path:           aws.String(parameterPath),
		Recursive:      aws.Bool(true),
		WithDecryption: aws.Bool(true),
	})

	params := make(map[string]string)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("get parameters by path %s: %w", parameterPath, err)
		}
		for _, p := range page.Parameters {
			name := aws.ToString(p.Name)
			if name == "" {
				continue
			}
			params[path.Base(name)] = aws.ToString(p.Value)
		}
	}
	return params, nil
}
