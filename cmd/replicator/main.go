// Command replicator is an AWS Lambda that copies identities inserted into
// a source DynamoDB table (via its stream) into a target DynamoDB table.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/jacentio/identitystore/dynamo"
	"github.com/jacentio/identitystore/internal/config"
	"github.com/jacentio/identitystore/store"
	"github.com/jacentio/identitystore/stream"
)

type replicatorConfig struct {
	AWSProfile     string `env:"REPLICATOR_AWS_PROFILE"`
	TargetTable    string `env:"REPLICATOR_TARGET_TABLE,required,notEmpty"`
	IdentityColumn string `env:"REPLICATOR_IDENTITY_COLUMN" envDefault:"identity"`
	MobColumn      string `env:"REPLICATOR_MOB_COLUMN"`

	SourceIdentityAttribute string `env:"REPLICATOR_SOURCE_IDENTITY_ATTRIBUTE" envDefault:"identity"`
	SourceMobAttribute      string `env:"REPLICATOR_SOURCE_MOB_ATTRIBUTE" envDefault:"mob"`
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	handler, err := newHandler(context.Background(), logger)
	if err != nil {
		logger.Error("failed to initialise replicator", "error", err)
		os.Exit(1)
	}

	lambda.Start(handler.HandleReplicate)
}

func newHandler(ctx context.Context, logger *slog.Logger) (*stream.Handler, error) {
	var cfg replicatorConfig
	if err := config.ParseEnv(&cfg); err != nil {
		return nil, err
	}

	client, err := dynamo.LoadClient(ctx, cfg.AWSProfile)
	if err != nil {
		return nil, err
	}

	target := store.New(
		dynamo.New(client, map[string]string{cfg.TargetTable: cfg.IdentityColumn}),
		cfg.storeConfig(),
	)

	return stream.NewHandler(target, cfg.streamConfig(), logger), nil
}

func (c replicatorConfig) storeConfig() store.Config {
	return store.Config{
		Table:          c.TargetTable,
		IdentityColumn: c.IdentityColumn,
		MobColumn:      c.MobColumn,
	}
}

func (c replicatorConfig) streamConfig() stream.Config {
	return stream.Config{
		IdentityAttribute: c.SourceIdentityAttribute,
		MobAttribute:      c.SourceMobAttribute,
	}
}
