package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*PostgresStore)(nil)
)

func TestImportFilterLimit(t *testing.T) {
	assert.Equal(t, defaultImportLimit, ImportFilter{}.limit())
	assert.Equal(t, defaultImportLimit, ImportFilter{Limit: -3}.limit())
	assert.Equal(t, 7, ImportFilter{Limit: 7}.limit())
}
