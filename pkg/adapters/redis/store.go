package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/aretw0/formwork/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by the store and the locker.
const DefaultPrefix = "formwork:form:"

// noExpiry is the index score of forms saved without a TTL (2100-01-01).
const noExpiry = 4102444800

// Store implements ports.DefinitionStore using Redis.
//
// Each form is one JSON string key. A sorted set scored by expiry time indexes the
// form IDs so List never has to SCAN the keyspace.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL expires forms that have not been saved for ttl. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New dials a Redis server and returns a store backed by it.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Client exposes the underlying client so a Locker can share the connection pool.
func (s *Store) Client() *backend.Client {
	return s.client
}

func (s *Store) key(formID string) string {
	return s.prefix + formID
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Save writes the definition and refreshes its index entry in one pipeline.
func (s *Store) Save(ctx context.Context, formID string, def *domain.Definition) error {
	data, err := json.Marshal(def)
	if err != nil {
		return fmt.Errorf("failed to marshal definition: %w", err)
	}

	score := float64(noExpiry)
	if s.ttl > 0 {
		score = float64(time.Now().Add(s.ttl).Unix())
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(formID), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: score, Member: formID})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save form %q to redis: %w", formID, err)
	}
	return nil
}

// Load reads a definition. Expired and missing forms both report domain.ErrFormNotFound.
func (s *Store) Load(ctx context.Context, formID string) (*domain.Definition, error) {
	data, err := s.client.Get(ctx, s.key(formID)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrFormNotFound
		}
		return nil, fmt.Errorf("failed to get form %q from redis: %w", formID, err)
	}

	def, err := domain.DecodeDefinition(data)
	if err != nil {
		return nil, fmt.Errorf("form %q: %w", formID, err)
	}
	return &def, nil
}

// Delete removes the form and its index entry.
func (s *Store) Delete(ctx context.Context, formID string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(formID))
	pipe.ZRem(ctx, s.indexKey(), formID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete form %q: %w", formID, err)
	}
	return nil
}

// List prunes expired index entries, then returns the remaining form IDs in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := strconv.FormatInt(time.Now().Unix(), 10)
	if err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", now).Err(); err != nil {
		return nil, fmt.Errorf("failed to prune expired forms: %w", err)
	}

	forms, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list forms: %w", err)
	}
	slices.Sort(forms)
	return forms, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
