package result

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/EPCCed/ffs-sub000/internal/aflux"
	"github.com/EPCCed/ffs-sub000/internal/interfaceset"
)

func threeInterfaceTable(t *testing.T) *interfaceset.Table {
	t.Helper()
	tbl, err := interfaceset.New([]interfaceset.Interface{
		{Lambda: 0, PPrune: 1.0},
		{Lambda: 1, PPrune: 0.5},
		{Lambda: 2, PPrune: 0.0},
	})
	require.NoError(t, err)
	return tbl
}

func TestRenderComputesExpectedPBA(t *testing.T) {
	tbl := threeInterfaceTable(t)
	store := New(tbl.N())

	// interface 2 kept 50 of 100 trials from interface 1, and interface 3
	// 50 of the 100 fired from interface 2, all unit weight:
	// P(B|A) = 0.5 * 0.5
	store.SetNStateKeep(1, 100)
	store.AccumulateWeight(2, 50.0)
	store.SetNStateKeep(2, 50)
	store.AddTrialSuccess(2) // contributes to "success into interface 2" count, repeat below
	for i := 0; i < 49; i++ {
		store.AddTrialSuccess(2)
	}
	store.AccumulateWeight(3, 50.0)
	store.SetNStateKeep(3, 50)
	for i := 0; i < 50; i++ {
		store.AddTrialSuccess(3)
	}

	flux := aflux.New(0)

	var buf bytes.Buffer
	summary, err := Render(&buf, tbl, []int{0, 100, 100}, store, flux)
	require.NoError(t, err)
	require.InDelta(t, 0.25, summary.PBA, 1e-9)
	require.Contains(t, buf.String(), "Probability P(B|A)")
}

func TestRenderZeroSuccessZeroesPBA(t *testing.T) {
	tbl := threeInterfaceTable(t)
	store := New(tbl.N())
	flux := aflux.New(0)

	var buf bytes.Buffer
	summary, err := Render(&buf, tbl, []int{0, 100, 100}, store, flux)
	require.NoError(t, err)
	require.Equal(t, 0.0, summary.PBA)
}
