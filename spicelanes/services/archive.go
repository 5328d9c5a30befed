package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/spicelanes/game-server/spicelanes"
	"github.com/spicelanes/game-server/spicelanes/database/repositories"
)

// objectPutter is the slice of the S3 client the archiver needs.
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// TradeArchiver periodically exports trade history as JSON objects to an
// S3-compatible bucket. One object per export window, keyed by window end
// time; reruns of the same window overwrite rather than duplicate.
type TradeArchiver struct {
	client objectPutter
	trades repositories.TradeRepository
	bucket string
	root   string

	interval time.Duration
	now      func() time.Time
}

func NewTradeArchiver(cfg spicelanes.SpacesConfig, trades repositories.TradeRepository) (*TradeArchiver, error) {
	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: fmt.Sprintf("https://%s.digitaloceanspaces.com", region),
		}, nil
	})

	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithEndpointResolverWithOptions(resolver),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.Key, cfg.Secret, "")),
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load spaces config: %w", err)
	}

	interval := time.Duration(cfg.Interval) * time.Minute
	if interval <= 0 {
		interval = time.Hour
	}

	return &TradeArchiver{
		client:   s3.NewFromConfig(awsCfg),
		trades:   trades,
		bucket:   cfg.Bucket,
		root:     cfg.Root,
		interval: interval,
		now:      time.Now,
	}, nil
}

// Run exports on the configured interval until ctx is canceled. Export
// failures are logged and retried next tick; they never stop the loop.
func (a *TradeArchiver) Run(ctx context.Context) error {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := a.ExportWindow(ctx); err != nil {
				slog.Error("Trade archive export failed",
					slog.String("type", "sys"),
					slog.String("error", err.Error()))
			}
		}
	}
}

// ExportWindow uploads all trades from the last interval as one JSON object.
// An empty window uploads nothing.
func (a *TradeArchiver) ExportWindow(ctx context.Context) error {
	end := a.now().UTC()
	since := end.Add(-a.interval)

	trades, err := a.trades.GetSince(ctx, since)
	if err != nil {
		return fmt.Errorf("failed to load trades: %w", err)
	}
	if len(trades) == 0 {
		return nil
	}

	body, err := json.Marshal(trades)
	if err != nil {
		return fmt.Errorf("failed to encode trades: %w", err)
	}

	key := fmt.Sprintf("%s/trades/%s.json", a.root, end.Format("2006-01-02T15-04-05"))
	contentType := "application/json"
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &a.bucket,
		Key:         &key,
		Body:        bytes.NewReader(body),
		ContentType: &contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload trade archive: %w", err)
	}

	slog.Info("Trade archive exported",
		slog.String("type", "sys"),
		slog.String("key", key),
		slog.Int("trades", len(trades)))
	return nil
}
