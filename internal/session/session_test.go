package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carscout/internal/models"
)

func TestPageCountBoundToQuery(t *testing.T) {
	st := NewState()
	q := models.Query{Brand: "Perodua", Model: "Myvi", MaxMileage: 50000}

	assert.Zero(t, st.PageCount(q))

	st.SetPageCount(q, 7)
	assert.Equal(t, 7, st.PageCount(q))
	assert.Equal(t, 7, st.PageCount(models.Query{Brand: "perodua", Model: "MYVI", MaxMileage: 50000}))
	assert.Zero(t, st.PageCount(models.Query{Brand: "Perodua", Model: "Myvi", MaxMileage: 60000}))
	assert.Zero(t, st.PageCount(models.Query{Brand: "Perodua", Model: "Axia", MaxMileage: 50000}))

	st.ResetPageCount()
	assert.Zero(t, st.PageCount(q))
}

func TestSnapshot(t *testing.T) {
	st := NewState()
	snap := st.Snapshot()
	assert.Equal(t, st.ID(), snap.ID)
	assert.Nil(t, snap.Query)

	q := models.Query{Brand: "Perodua", Model: "Myvi", MaxMileage: 50000}
	st.SetPageCount(q, 3)
	st.SetLastFile("listings_Perodua_Myvi_upto50000_2025-01-01_00-00-00.csv")

	snap = st.Snapshot()
	require.NotNil(t, snap.Query)
	assert.Equal(t, q, *snap.Query)
	assert.Equal(t, 3, snap.PageCount)
	assert.Equal(t, "listings_Perodua_Myvi_upto50000_2025-01-01_00-00-00.csv", snap.LastFile)
}

func TestStoreGet(t *testing.T) {
	store := NewStore(time.Hour)

	a := store.Get("")
	require.NotEmpty(t, a.ID())
	assert.Same(t, a, store.Get(a.ID()))

	// Unknown and malformed ids get a fresh session
	assert.NotSame(t, a, store.Get("0b7e3a52-8d7e-4a8f-9f0a-3c2d1e4b5a69"))
	b := store.Get("not-a-uuid")
	assert.NotEqual(t, "not-a-uuid", b.ID())

	assert.Equal(t, 3, store.Len())
}

func TestStoreExpiresIdleSessions(t *testing.T) {
	now := time.Now()
	store := NewStore(30 * time.Minute)
	store.now = func() time.Time { return now }

	old := store.Get("")
	now = now.Add(2 * time.Hour)

	fresh := store.Get(old.ID())
	assert.NotEqual(t, old.ID(), fresh.ID())
	assert.Equal(t, 1, store.Len())
}
