package config

import (
	"context"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"golang.org/x/sync/errgroup"

	"github.com/rpupo63/aether-backend/errs"
)

// SSMSuffix marks a key whose value is the name of an SSM parameter, e.g.
// DATABASE_URL_SSM_PARAM=/aether/prod/database-url fills DATABASE_URL.
const SSMSuffix = "_SSM_PARAM"

type ParameterGetter interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

func NewSSMClient(ctx context.Context) (*ssm.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errs.NewConfigError("aws", err)
	}
	return ssm.NewFromConfig(cfg), nil
}

// SSMReferences maps each target key to the parameter name that should fill it.
// Targets that already have a value are skipped.
func SSMReferences(config map[string]string) map[string]string {
	refs := map[string]string{}
	for key, name := range config {
		target, ok := strings.CutSuffix(key, SSMSuffix)
		if !ok || target == "" || name == "" {
			continue
		}
		if IsSet(config, target) {
			continue
		}
		refs[target] = name
	}
	return refs
}

// ResolveSSMParameters fetches every referenced parameter with decryption and
// writes the values into config. The first failure is returned.
func ResolveSSMParameters(ctx context.Context, config map[string]string, client ParameterGetter) error {
	refs := SSMReferences(config)
	if len(refs) == 0 {
		return nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for target, name := range refs {
		target, name := target, name
		g.Go(func() error {
			out, err := client.GetParameter(gctx, &ssm.GetParameterInput{
				Name:           aws.String(name),
				WithDecryption: aws.Bool(true),
			})
			if err != nil {
				return errs.NewConfigError(name, err)
			}
			if out == nil || out.Parameter == nil {
				return errs.NewEnvironmentVariableError(target)
			}

			mu.Lock()
			config[target] = aws.ToString(out.Parameter.Value)
			mu.Unlock()
			return nil
		})
	}
	return g.Wait()
}
