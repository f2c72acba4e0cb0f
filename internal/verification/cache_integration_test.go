//go:build integration

package verification_test

import (
	"context"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veridoc/internal/document"
	docstore "veridoc/internal/document/store"
	"veridoc/internal/ledger"
	platformredis "veridoc/internal/platform/redis"
	"veridoc/internal/verification"
	"veridoc/pkg/testutil/containers"
)

func TestVerifyByCertID_PopulatesRedisCache(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	rc := containers.NewRedisContainer(t)
	cache, err := platformredis.New(rc.Addr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	docs := docstore.NewMemoryStore()
	led, err := ledger.NewFileStore(filepath.Join(t.TempDir(), "ledger.json"), nil, nil)
	require.NoError(t, err)

	identity := document.Identity{
		InstituteID: 1,
		DocType:     document.TypeCertificate,
		StudentRoll: "R1",
		StudentName: "Alice",
		Name:        "BSc",
		IssueDate:   "2024-01-01",
	}
	certID, err := document.DeriveCertID(identity)
	require.NoError(t, err)

	// The record's number differs from the derived id, so resolution has to
	// go through the ledger scan the first time.
	rec := &document.Record{
		InstituteID:    1,
		DocType:        document.TypeCertificate,
		Name:           "BSc",
		Number:         "SER-001",
		IssueDate:      "2024-01-01",
		BlockchainHash: "hash-1",
		Status:         document.StatusConfirmed,
	}
	require.NoError(t, docs.Save(ctx, rec))
	hash := rec.BlockchainHash
	require.NoError(t, led.Append(ctx, ledger.Entry{
		DocID:          rec.ID,
		BlockchainHash: &hash,
		Data:           identity.Fingerprint(),
	}))

	engine := verification.NewEngine(docs, led, nil, cache, nil, nil)

	res := engine.VerifyByCertID(ctx, certID)
	require.True(t, res.Valid())

	cached, err := rc.Client.Get(ctx, "veridoc:certid:"+certID).Result()
	require.NoError(t, err)
	assert.Equal(t, strconv.FormatInt(rec.ID, 10), cached)

	// Second lookup resolves straight through the cache.
	res = engine.VerifyByCertID(ctx, certID)
	assert.True(t, res.Valid())
}
