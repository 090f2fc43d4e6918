package app

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOptionsDefaultsAreValid(t *testing.T) {
	opts := NewOptions()

	require.NoError(t, opts.Complete())
	assert.NoError(t, opts.Validate())

	assert.Equal(t, ":8000", opts.HTTP.Addr)
	assert.Equal(t, StoreDriverMemory, opts.Store.Driver)
	assert.Equal(t, 3, opts.RAG.TopK)
	assert.Equal(t, 32, opts.Corpus.BatchSize)
	assert.False(t, opts.Cache.Enabled)
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(o *Options)
		wantErr string
	}{
		{
			name:    "empty corpus path",
			mutate:  func(o *Options) { o.Corpus.Path = "" },
			wantErr: "corpus.path",
		},
		{
			name:    "zero batch size",
			mutate:  func(o *Options) { o.Corpus.BatchSize = 0 },
			wantErr: "corpus.batch-size",
		},
		{
			name:    "percentile out of range",
			mutate:  func(o *Options) { o.Chunker.BreakpointPercentile = 101 },
			wantErr: "chunker.breakpoint-percentile",
		},
		{
			name:    "zero top-k",
			mutate:  func(o *Options) { o.RAG.TopK = 0 },
			wantErr: "rag.top-k",
		},
		{
			name:    "unknown store driver",
			mutate:  func(o *Options) { o.Store.Driver = "postgres" },
			wantErr: "store.driver",
		},
		{
			name: "openai chat provider without api key",
			mutate: func(o *Options) {
				o.Chat.Provider = "openai"
				o.Chat.APIKey = ""
			},
			wantErr: "api-key",
		},
		{
			name: "cache enabled with bad redis port",
			mutate: func(o *Options) {
				o.Cache.Enabled = true
				o.Cache.Redis.Port = 0
			},
			wantErr: "redis port",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := NewOptions()
			tt.mutate(opts)

			err := opts.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestOptionsAddFlags(t *testing.T) {
	opts := NewOptions()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	opts.AddFlags(fs)

	err := fs.Parse([]string{
		"--corpus.path=testdata/recipes.csv",
		"--rag.top-k=5",
		"--store.driver=milvus",
		"--chat.model=meltemi-7b-instruct",
		"--cache.enabled=true",
		"--cache.redis.host=cache.internal",
	})
	require.NoError(t, err)

	assert.Equal(t, "testdata/recipes.csv", opts.Corpus.Path)
	assert.Equal(t, 5, opts.RAG.TopK)
	assert.Equal(t, StoreDriverMilvus, opts.Store.Driver)
	assert.Equal(t, "meltemi-7b-instruct", opts.Chat.Model)
	assert.True(t, opts.Cache.Enabled)
	assert.Equal(t, "cache.internal", opts.Cache.Redis.Host)
}
