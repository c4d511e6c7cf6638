package sweep

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leafsim/leafsim/sim"
)

func TestNewRow(t *testing.T) {
	res := &sim.Result{B: 120, R: 30, P: 0.25, Seed: 77, FinalFullness: 0.7, TimeAvgFullness: 0.69}
	row := NewRow(5, res)

	assert.Equal(t, Row{TaskID: 5, B: 120, R: 30, Alpha: 0.25, P: 0.25, Seed: 77,
		Fullness: 0.7, TimeAvgFullness: 0.69}, row)
}

func TestWriteRows_Header(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRows(&buf, nil))
	assert.Equal(t, "task_id,B,r,alpha,p,seed,fullness,time_avg_fullness\n", buf.String())
}

func TestReadRows_PreservesWrittenValues(t *testing.T) {
	rows := []Row{
		{TaskID: 0, B: 120, R: 1, Alpha: 1.0 / 120, P: 0.1, Seed: 4294967295, Fullness: 0.6931471805599453, TimeAvgFullness: 0.7},
		{TaskID: 3, B: 120, R: 7, Alpha: 7.0 / 120, P: 0.5, Seed: 0, Fullness: 1.0 / 3, TimeAvgFullness: 0.5},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteRows(&buf, rows))

	got, err := ReadRows(&buf)
	require.NoError(t, err)
	assert.Equal(t, rows, got)
}

func TestReadRows_MinimalColumns(t *testing.T) {
	// Older deferred-only output has no task_id, seed or time average.
	in := "B,r,alpha,p,fullness\n120,1,0.008333333333333333,0.5,0.71\n"

	rows, err := ReadRows(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 0, rows[0].TaskID)
	assert.Equal(t, int64(0), rows[0].Seed)
	assert.Equal(t, 0.71, rows[0].TimeAvgFullness)
}

func TestReadRows_Errors(t *testing.T) {
	_, err := ReadRows(strings.NewReader("B,r,p,fullness\n1,1,0.5,0.5\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "alpha")

	_, err = ReadRows(strings.NewReader("B,r,alpha,p,fullness\n120,x,0.1,0.5,0.7\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestReadRows_Empty(t *testing.T) {
	rows, err := ReadRows(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestCollect_ReadsResultFilesInOrder(t *testing.T) {
	dir := t.TempDir()
	for _, id := range []int{10, 2, 0} {
		path, err := WriteResultFile(dir, id, []Row{{TaskID: id, B: 8, R: 1, Alpha: 0.125, P: 0.5, Fullness: 0.5}})
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, ResultFileName(id)), path)
	}
	// Unrelated files are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.csv"), []byte("x\n"), 0644))

	rows, err := Collect(dir)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []int{0, 2, 10}, []int{rows[0].TaskID, rows[1].TaskID, rows[2].TaskID})
}

func TestCollect_NoFiles(t *testing.T) {
	_, err := Collect(t.TempDir())
	assert.Error(t, err)
}

func TestResultFileName(t *testing.T) {
	assert.Equal(t, "result_000042.csv", ResultFileName(42))
}
