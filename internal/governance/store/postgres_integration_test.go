//go:build integration

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"realmgov/pkg/testutil/containers"
)

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	pg := containers.GetManager().GetPostgres(t)
	store := NewPostgres(pg.DB)
	suite.Run(t, &RecordStoreSuite{newStore: func() transactionalStore {
		if err := pg.Truncate(context.Background()); err != nil {
			t.Fatalf("truncate: %v", err)
		}
		return store
	}})
}
