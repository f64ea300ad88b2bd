package rules

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"compliance-engine/core/compliance"
	"compliance-engine/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

//go:embed bundled/*.yaml
var bundledFiles embed.FS

// maxRuleFileBytes caps a single remote rule file.
const maxRuleFileBytes = 1 << 20

// BundledProvider serves the rule sets compiled into the binary.
type BundledProvider struct {
	files   fs.FS
	counter Counter
}

// NewBundledProvider creates a provider over the embedded rule sets.
func NewBundledProvider(counter Counter) *BundledProvider {
	return &BundledProvider{files: bundledFiles, counter: counter}
}

func (p *BundledProvider) Name() string { return "bundled" }

// Rules parses every embedded rule file in name order.
func (p *BundledProvider) Rules(ctx context.Context) ([]compliance.Rule, error) {
	names, err := fs.Glob(p.files, "bundled/*.yaml")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	var out []compliance.Rule
	for _, name := range names {
		data, err := fs.ReadFile(p.files, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		rules, err := Parse(data, name, p.counter)
		if err != nil {
			return nil, err
		}
		out = append(out, rules...)
	}
	return out, nil
}

// RemoteProvider loads rule sets from the object store under a prefix.
type RemoteProvider struct {
	client  storage.Client
	bucket  string
	prefix  string
	counter Counter
	logger  *zap.Logger
}

// NewRemoteProvider creates a provider reading <prefix>/*.yaml from bucket.
func NewRemoteProvider(client storage.Client, bucket, prefix string, counter Counter, logger *zap.Logger) *RemoteProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RemoteProvider{
		client:  client,
		bucket:  bucket,
		prefix:  strings.Trim(prefix, "/"),
		counter: counter,
		logger:  logger,
	}
}

func (p *RemoteProvider) Name() string { return "remote" }

// Rules downloads and parses every rule file. Any unreadable or invalid file
// fails the whole load so a half-published rule tree is never served.
func (p *RemoteProvider) Rules(ctx context.Context) ([]compliance.Rule, error) {
	keys, err := storage.ListKeys(ctx, p.client, p.bucket, p.prefix, ".yaml", ".yml")
	if err != nil {
		return nil, err
	}

	var out []compliance.Rule
	for _, key := range keys {
		data, err := storage.ReadObject(ctx, p.client, p.bucket, key, maxRuleFileBytes)
		if err != nil {
			return nil, err
		}
		rules, err := Parse(data, key, p.counter)
		if err != nil {
			return nil, err
		}
		out = append(out, rules...)
	}
	p.logger.Debug("Loaded remote rule sets", zap.Int("files", len(keys)), zap.Int("rules", len(out)))
	return out, nil
}

// Publish validates a rule file and uploads it under the provider's prefix.
// It returns the object key written.
func (p *RemoteProvider) Publish(ctx context.Context, name string, data []byte) (string, error) {
	rules, err := Parse(data, name, p.counter)
	if err != nil {
		return "", err
	}
	if len(rules) == 0 {
		return "", fmt.Errorf("%s declares no rules", name)
	}

	key := path.Join(p.prefix, path.Base(name))
	_, err = p.client.PutObject(ctx, p.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/yaml",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	p.logger.Info("Published rule file", zap.String("key", key), zap.Int("rules", len(rules)))
	return key, nil
}
