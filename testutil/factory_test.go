package testutil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dan-strohschein/syndrdb-batch/testutil"
)

func TestRowFactory_Build(t *testing.T) {
	factory := testutil.NewUserRowFactory()

	row := factory.Build()
	assert.Contains(t, row, "name")
	assert.IsType(t, "", row["name"])
}

func TestRowFactory_BuildWithOptions(t *testing.T) {
	factory := testutil.NewUserRowFactory()

	row := factory.Build(
		testutil.WithField("name", "Custom"),
		testutil.WithFields(map[string]interface{}{"created_at": int64(5)}),
	)
	assert.Equal(t, "Custom", row["name"])
	assert.Equal(t, int64(5), row["created_at"])

	row = factory.Build(testutil.Without("name"))
	assert.NotContains(t, row, "name")
}

func TestRowFactory_BuildList(t *testing.T) {
	factory := testutil.NewUserRowFactory()

	rows := factory.BuildList(3)
	assert.Len(t, rows, 3)
	assert.NotEqual(t, rows[0]["name"], rows[1]["name"])
}

func TestCounter(t *testing.T) {
	gen, calls := testutil.Counter(10)

	assert.Equal(t, int64(10), gen())
	assert.Equal(t, int64(11), gen())
	assert.Equal(t, int64(2), calls())
}

func TestUsersTable(t *testing.T) {
	gen, _ := testutil.Counter(1)
	table := testutil.UsersTable(gen)

	assert.Equal(t, "id", table.AutoIncrementColumn().Name)
	assert.True(t, table.Column("created_at").HasClientDefault())
}
