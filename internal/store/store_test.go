package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wadmes/VLSI-LLM/internal/store"
	"github.com/wadmes/VLSI-LLM/internal/testutil"
)

func TestDesignRepository_Ensure(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := store.NewDesignRepository(db)
	err := repo.Ensure(&store.DesignRecord{
		RTLID:           0,
		Instruction:     "Design a mux.",
		SynthesisStatus: store.StatusPending,
		ModuleCount:     1,
	})
	require.NoError(t, err)

	found, err := repo.Get(0)
	require.NoError(t, err)
	assert.Equal(t, "Design a mux.", found.Instruction)
	assert.Equal(t, store.StatusPending, found.SynthesisStatus)
}

func TestDesignRepository_KeepsZeroRTLID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	// Dataset indices are zero-based: design 0 must be stored under rtl_id 0,
	// not handed an auto-assigned key that collides with design 1.
	repo := store.NewDesignRepository(db)
	require.NoError(t, repo.Ensure(&store.DesignRecord{RTLID: 0, Instruction: "first"}))
	require.NoError(t, repo.Ensure(&store.DesignRecord{RTLID: 1, Instruction: "second"}))

	found, err := repo.Get(0)
	require.NoError(t, err)
	assert.Equal(t, 0, found.RTLID)
	assert.Equal(t, "first", found.Instruction)

	require.NoError(t, repo.SetDescription(0, "a mux"))
	found, err = repo.Get(0)
	require.NoError(t, err)
	assert.Equal(t, "a mux", found.Description)

	recs, err := repo.List()
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, 0, recs[0].RTLID)
	assert.Equal(t, 1, recs[1].RTLID)
	assert.Equal(t, "second", recs[1].Instruction)
}

func TestDesignRepository_EnsurePreservesStageFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := store.NewDesignRepository(db)
	require.NoError(t, repo.Ensure(&store.DesignRecord{
		RTLID:           0,
		Instruction:     "Design a mux.",
		SynthesisStatus: store.StatusPending,
	}))
	require.NoError(t, repo.SetSynthesisStatus(0, store.StatusSuccess))

	// Re-registering the dataset must not reset the synthesis outcome.
	require.NoError(t, repo.Ensure(&store.DesignRecord{
		RTLID:           0,
		Instruction:     "Design a mux (updated).",
		SynthesisStatus: store.StatusPending,
	}))

	found, err := repo.Get(0)
	require.NoError(t, err)
	assert.Equal(t, "Design a mux (updated).", found.Instruction)
	assert.Equal(t, store.StatusSuccess, found.SynthesisStatus)
}

func TestDesignRepository_SetSynthesisStatus_CreatesStub(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := store.NewDesignRepository(db)
	require.NoError(t, repo.SetSynthesisStatus(42, store.StatusTimeout))

	found, err := repo.Get(42)
	require.NoError(t, err)
	assert.Equal(t, store.StatusTimeout, found.SynthesisStatus)
}

func TestDesignRepository_SetDataflowStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := store.NewDesignRepository(db)
	rec := testutil.TestDesign(t, db, 0)
	assert.Nil(t, rec.DataflowStatus)

	require.NoError(t, repo.SetDataflowStatus(0, true))
	found, err := repo.Get(0)
	require.NoError(t, err)
	require.NotNil(t, found.DataflowStatus)
	assert.True(t, *found.DataflowStatus)
}

func TestDesignRepository_List(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := store.NewDesignRepository(db)
	testutil.TestDesign(t, db, 2)
	testutil.TestDesign(t, db, 0, testutil.WithSynthesisStatus(store.StatusSuccess))

	recs, err := repo.List()
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, 0, recs[0].RTLID)
	assert.Equal(t, 2, recs[1].RTLID)
}

func TestNetlistRepository_UpsertUniqueAfterRerun(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := store.NewNetlistRepository(db)
	require.NoError(t, repo.Upsert(&store.NetlistRecord{RTLID: 0, Efforts: "low_low_low", GraphgenStatus: false}))
	require.NoError(t, repo.Upsert(&store.NetlistRecord{RTLID: 0, Efforts: "low_low_low", GraphgenStatus: true}))

	recs, err := repo.ByRTLID(0)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.True(t, recs[0].GraphgenStatus)
}

func TestNetlistRepository_Get(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := store.NewNetlistRepository(db)
	require.NoError(t, repo.Upsert(&store.NetlistRecord{RTLID: 3, Efforts: "high_low_medium", GraphgenStatus: true}))

	rec, err := repo.Get(3, "high_low_medium")
	require.NoError(t, err)
	assert.True(t, rec.GraphgenStatus)

	_, err = repo.Get(3, "low_low_low")
	assert.Error(t, err)
}

func TestLabelRepository_UpsertAndAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := store.NewLabelRepository(db)
	require.NoError(t, repo.Upsert(&store.Label{RTLID: 0, Model: "GPT_4o", Prediction: "Arithmetic"}))
	require.NoError(t, repo.Upsert(&store.Label{RTLID: 0, Model: "Llama3_70b", Prediction: "Arithmetic"}))
	// Re-prediction replaces, never duplicates.
	require.NoError(t, repo.Upsert(&store.Label{RTLID: 0, Model: "GPT_4o", Prediction: "Control"}))

	labels, err := repo.ByRTLID(0)
	require.NoError(t, err)
	require.Len(t, labels, 2)

	all, err := repo.All()
	require.NoError(t, err)
	assert.Equal(t, map[int]map[string]string{
		0: {"GPT_4o": "Control", "Llama3_70b": "Arithmetic"},
	}, all)
}
