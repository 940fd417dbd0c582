package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMongoDatabaseName(t *testing.T) {
	tests := map[string]string{
		"mongodb://localhost:27017/journal":                                "journal",
		"mongodb://localhost:27017/diary?retryWrites=true":                 "diary",
		"mongodb+srv://u:p@cluster0.example.net/prod?retryWrites=true&w=1": "prod",
		"mongodb://localhost:27017":                                        "journal",
		"mongodb://localhost:27017/":                                       "journal",
		"mongodb://a:27017,b:27017/replica?replicaSet=rs0":                 "replica",
	}
	for uri, want := range tests {
		assert.Equal(t, want, mongoDatabaseName(uri), uri)
	}
}
