// Package stream provides DynamoDB Streams handlers that replicate stored
// identities into another identity store.
package stream

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"

	"github.com/jacentio/identitystore/store"
)

// Config names the source item attributes read from stream images.
type Config struct {
	// IdentityAttribute holds the identity value.
	// Default: "identity"
	IdentityAttribute string

	// MobAttribute holds the mob label. Empty disables mob replication.
	// Default: "mob"
	MobAttribute string
}

// DefaultConfig returns the attribute names used by store.DefaultConfig plus a mob attribute.
func DefaultConfig() Config {
	return Config{
		IdentityAttribute: "identity",
		MobAttribute:      "mob",
	}
}

// Handler replicates newly inserted identities from a DynamoDB stream.
type Handler struct {
	target *store.Store
	config Config
	logger *slog.Logger
}

// errNoTarget is returned when the handler was built without a target store.
var errNoTarget = errors.New("stream: no target store configured")

// NewHandler creates a new stream handler writing into target.
func NewHandler(target *store.Store, config Config, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if config.IdentityAttribute == "" {
		config.IdentityAttribute = "identity"
	}
	return &Handler{
		target: target,
		config: config,
		logger: logger,
	}
}

// Config returns the attribute names the handler reads.
func (h *Handler) Config() Config {
	return h.config
}

// HandleReplicate processes DynamoDB stream events, storing every inserted
// identity in the target store. Identities the target already holds are
// skipped, so redelivered batches are safe.
// This function is designed to be used as an AWS Lambda handler.
func (h *Handler) HandleReplicate(ctx context.Context, event events.DynamoDBEvent) error {
	if h.target == nil && len(event.Records) > 0 {
		return errNoTarget
	}
	for _, record := range event.Records {
		if err := h.processRecord(ctx, record); err != nil {
			h.logger.Error("failed to process record",
				"eventID", record.EventID,
				"error", err,
			)
			return err // Will retry, eventually DLQ
		}
	}
	return nil
}

// processRecord replicates a single DynamoDB stream record.
func (h *Handler) processRecord(ctx context.Context, record events.DynamoDBEventRecord) error {
	if record.EventName != "INSERT" {
		return nil
	}

	identity := getStringAttr(record.Change.NewImage, h.config.IdentityAttribute)
	if identity == "" {
		h.logger.Warn("skipping record without identity",
			"eventID", record.EventID,
			"attribute", h.config.IdentityAttribute,
		)
		return nil
	}

	var (
		mob    string
		hasMob bool
	)
	if h.config.MobAttribute != "" {
		mob, hasMob = lookupStringAttr(record.Change.NewImage, h.config.MobAttribute)
	}

	var err error
	if hasMob {
		err = h.target.StoreMobIdentity(ctx, identity, mob)
	} else {
		err = h.target.StoreIdentity(ctx, identity)
	}
	if errors.Is(err, store.ErrMobsUnsupported) {
		// Target has no mob column; keep the identity, drop the label.
		h.logger.Warn("target does not support mobs, dropping mob",
			"identity", identity,
			"mob", mob,
		)
		err = h.target.StoreIdentity(ctx, identity)
	}

	switch {
	case err == nil:
		h.logger.Info("identity replicated",
			"identity", identity,
			"mob", mob,
		)
		return nil
	case errors.Is(err, store.ErrNonUniqueIdentity):
		h.logger.Info("identity already replicated",
			"identity", identity,
		)
		return nil
	default:
		return fmt.Errorf("replicate identity: %w", err)
	}
}

// getStringAttr extracts a string attribute from a DynamoDB stream image.
// Number attributes are returned in their string form.
func getStringAttr(image map[string]events.DynamoDBAttributeValue, key string) string {
	v, _ := lookupStringAttr(image, key)
	return v
}

// lookupStringAttr is getStringAttr that also reports whether a string or
// number attribute was present.
func lookupStringAttr(image map[string]events.DynamoDBAttributeValue, key string) (string, bool) {
	v, ok := image[key]
	if !ok {
		return "", false
	}
	switch v.DataType() {
	case events.DataTypeString:
		return v.String(), true
	case events.DataTypeNumber:
		return v.Number(), true
	}
	return "", false
}
