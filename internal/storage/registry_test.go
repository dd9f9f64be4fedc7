package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFactory struct {
	name string
	got  StorageConfig
}

func (f *stubFactory) Create(config StorageConfig) (Storage, error) {
	f.got = config
	return &SQLStore{}, nil
}

func (f *stubFactory) GetType() string { return f.name }

func TestRegistry(t *testing.T) {
	registry := NewRegistry()
	sqlite := &stubFactory{name: "sqlite"}
	registry.Register("sqlite", sqlite)
	registry.Register("postgres", &stubFactory{name: "postgres"})

	assert.Equal(t, []string{"postgres", "sqlite"}, registry.GetAvailableTypes())

	cfg := GenericConfig{"type": "sqlite", "database_path": "/tmp/x.db"}
	store, err := registry.Create("sqlite", cfg)
	require.NoError(t, err)
	assert.NotNil(t, store)
	assert.Equal(t, cfg, sqlite.got)

	_, err = registry.Create("mysql", cfg)
	assert.EqualError(t, err, "storage type mysql not registered")
}

func TestGenericConfig(t *testing.T) {
	cfg := GenericConfig{"type": "postgres", "connection_string": "postgres://x", "port": 5432}

	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "postgres", cfg.GetType())
	assert.Equal(t, "postgres://x", cfg.GetConnectionString())
	assert.Equal(t, "", cfg.String("port"))
	assert.Equal(t, "unknown", GenericConfig{}.GetType())
}

func TestRebind(t *testing.T) {
	query := `SELECT a FROM t WHERE x = ? AND y = ?`

	assert.Equal(t, query, (&SQLStore{placeholder: Question}).rebind(query))
	assert.Equal(t, `SELECT a FROM t WHERE x = $1 AND y = $2`, (&SQLStore{placeholder: Dollar}).rebind(query))
}
