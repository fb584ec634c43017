package pubsub

import (
	"context"
	"errors"
	"testing"

	"github.com/tablesight/tablesight-backend/pkg/config"
)

func TestTopicResourceName(t *testing.T) {
	c := &Client{projectID: "tablesight-prod"}

	if got := c.topicResourceName("ts-facts-synced"); got != "projects/tablesight-prod/topics/ts-facts-synced" {
		t.Fatalf("unexpected resource name %q", got)
	}
	full := "projects/other/topics/custom"
	if got := c.topicResourceName(full); got != full {
		t.Fatalf("expected full name passthrough, got %q", got)
	}
	if got := c.topicResourceName("  "); got != "" {
		t.Fatalf("expected empty name, got %q", got)
	}
	if got := (&Client{}).topicResourceName("ts-facts-synced"); got != "" {
		t.Fatalf("expected empty name without project, got %q", got)
	}
}

func TestTopicNames(t *testing.T) {
	if names := topicNames(config.PubSubConfig{FactsTopic: " ts-facts-synced "}); len(names) != 1 || names[0] != "ts-facts-synced" {
		t.Fatalf("unexpected names %v", names)
	}
	if names := topicNames(config.PubSubConfig{}); len(names) != 0 {
		t.Fatalf("expected no names, got %v", names)
	}
}

func TestNewClientValidation(t *testing.T) {
	ctx := context.Background()
	if _, err := NewClient(ctx, config.GCPConfig{}, config.PubSubConfig{FactsTopic: "t"}, nil); !errors.Is(err, errProjectIDRequired) {
		t.Fatalf("expected project id error, got %v", err)
	}
	if _, err := NewClient(ctx, config.GCPConfig{ProjectID: "p"}, config.PubSubConfig{}, nil); !errors.Is(err, errNoTopics) {
		t.Fatalf("expected topic error, got %v", err)
	}
}

func TestNilClientPublish(t *testing.T) {
	var c *Client
	if _, err := c.Publish(context.Background(), []byte("{}"), nil); !errors.Is(err, errNotInitialized) {
		t.Fatalf("expected not initialized, got %v", err)
	}
}
