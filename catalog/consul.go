package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/hashicorp/consul/api"

	"github.com/mwantia/tarbuild/data"
)

// ConsulCatalog stores member records as JSON values in HashiCorp Consul KV
// under a configurable prefix, one key per build/member pair.
//
// Consul KV limits values to 512KB; records are a few hundred bytes, so the
// practical limit is the number of keys, not their size.
type ConsulCatalog struct {
	mu     sync.RWMutex
	client *api.Client
	kv     *api.KV

	config *ConsulCatalogConfig
}

// ConsulCatalogConfig contains configuration options for the Consul catalog.
type ConsulCatalogConfig struct {
	// Address of the Consul server (default: "127.0.0.1:8500")
	Address string

	// Token for Consul ACL authentication (optional)
	Token string

	// Datacenter to use (optional)
	Datacenter string

	// Prefix for all keys in Consul KV (default: "tarbuild")
	Prefix string
}

// NewConsulCatalog creates a Consul-backed member catalog.
func NewConsulCatalog(config *ConsulCatalogConfig) (*ConsulCatalog, error) {
	if config == nil {
		config = &ConsulCatalogConfig{}
	}

	if config.Address == "" {
		config.Address = "127.0.0.1:8500"
	}
	if config.Prefix == "" {
		config.Prefix = "tarbuild"
	}

	clientConfig := api.DefaultConfig()
	clientConfig.Address = config.Address
	if config.Token != "" {
		clientConfig.Token = config.Token
	}
	if config.Datacenter != "" {
		clientConfig.Datacenter = config.Datacenter
	}

	client, err := api.NewClient(clientConfig)
	if err != nil {
		return nil, err
	}

	return &ConsulCatalog{
		client: client,
		kv:     client.KV(),
		config: config,
	}, nil
}

// Name returns the identifier name defined for this catalog backend.
func (*ConsulCatalog) Name() string {
	return "consul"
}

// Open verifies the Consul agent is reachable.
func (cc *ConsulCatalog) Open(ctx context.Context) error {
	_, err := cc.client.Agent().NodeName()
	return err
}

func (cc *ConsulCatalog) Close(ctx context.Context) error {
	// Nothing to release - Consul handles connections
	return nil
}

func (cc *ConsulCatalog) PutMember(ctx context.Context, record *data.MemberRecord) error {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	value, err := record.Marshal()
	if err != nil {
		return err
	}

	pair := &api.KVPair{
		Key:   cc.buildKey(record.BuildID, record.Key),
		Value: value,
	}

	_, err = cc.kv.Put(pair, (&api.WriteOptions{}).WithContext(ctx))
	return err
}

func (cc *ConsulCatalog) GetMember(ctx context.Context, buildID, key string) (*data.MemberRecord, error) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	pair, _, err := cc.kv.Get(cc.buildKey(buildID, key), (&api.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return nil, err
	}
	if pair == nil {
		return nil, data.ErrNotExist
	}

	var record data.MemberRecord
	if err := record.Unmarshal(pair.Value); err != nil {
		return nil, err
	}

	return &record, nil
}

func (cc *ConsulCatalog) ListMembers(ctx context.Context, buildID string) ([]*data.MemberRecord, error) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	pairs, _, err := cc.kv.List(cc.buildKey(buildID, ""), (&api.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return nil, err
	}

	records := make([]*data.MemberRecord, 0, len(pairs))
	for _, pair := range pairs {
		var record data.MemberRecord
		if err := record.Unmarshal(pair.Value); err != nil {
			return nil, err
		}

		records = append(records, &record)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Key < records[j].Key
	})

	return records, nil
}

func (cc *ConsulCatalog) DeleteBuild(ctx context.Context, buildID string) (int, error) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	prefix := cc.buildKey(buildID, "")

	keys, _, err := cc.kv.Keys(prefix, "", (&api.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return 0, err
	}

	if _, err := cc.kv.DeleteTree(prefix, (&api.WriteOptions{}).WithContext(ctx)); err != nil {
		return 0, err
	}

	return len(keys), nil
}

func (cc *ConsulCatalog) buildKey(buildID, key string) string {
	return strings.TrimPrefix(cc.config.Prefix+"/"+buildID+"/"+key, "/")
}
