/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/

package batch

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeNpyFloat64(t *testing.T, path string, shape []int, values []float64) {
	t.Helper()
	var shapeStr string
	if len(shape) == 1 {
		shapeStr = fmt.Sprintf("(%d,)", shape[0])
	} else {
		shapeStr = fmt.Sprintf("(%d, %d)", shape[0], shape[1])
	}
	header := fmt.Sprintf("{'descr': '<f8', 'fortran_order': False, 'shape': %s, }", shapeStr)
	// pad so magic+version+len+header is a multiple of 64, newline terminated
	total := 6 + 2 + 2 + len(header) + 1
	padding := (64 - total%64) % 64
	for i := 0; i < padding; i++ {
		header += " "
	}
	header += "\n"

	buf := make([]byte, 0, 10+len(header)+8*len(values))
	buf = append(buf, []byte("\x93NUMPY")...)
	buf = append(buf, 1, 0)
	lenBytes := make([]byte, 2)
	binary.LittleEndian.PutUint16(lenBytes, uint16(len(header)))
	buf = append(buf, lenBytes...)
	buf = append(buf, []byte(header)...)
	for _, v := range values {
		valueBytes := make([]byte, 8)
		binary.LittleEndian.PutUint64(valueBytes, math.Float64bits(v))
		buf = append(buf, valueBytes...)
	}
	require.NoError(t, os.WriteFile(path, buf, 0o644))
}

func TestReadObservations_Npy1D(t *testing.T) {
	path := filepath.Join(t.TempDir(), "single.npy")
	values := make([]float64, 24)
	for i := range values {
		values[i] = float64(i) * 0.5
	}
	writeNpyFloat64(t, path, []int{24}, values)

	observations, err := ReadObservations(path)
	require.NoError(t, err)
	require.Len(t, observations, 1)
	require.Len(t, observations[0], 24)
	assert.InDelta(t, 0.5, observations[0][1], 1e-12)
}

func TestReadObservations_Npy2D(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.npy")
	values := make([]float64, 3*24)
	for i := range values {
		values[i] = float64(i)
	}
	writeNpyFloat64(t, path, []int{3, 24}, values)

	observations, err := ReadObservations(path)
	require.NoError(t, err)
	require.Len(t, observations, 3)
	assert.InDelta(t, 24.0, observations[1][0], 1e-12)
	assert.InDelta(t, 71.0, observations[2][23], 1e-12)
}

func TestReadObservations_NpyRejectsBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus.npy")
	require.NoError(t, os.WriteFile(path, []byte("not a npy file"), 0o644))

	_, err := ReadObservations(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a npy file")
}

func TestReadObservations_Csv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.csv")
	content := "s1,s2,s3\n1.0,2.0,3.0\n4.0,5.0,6.0\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	observations, err := ReadObservations(path)
	require.NoError(t, err)
	require.Len(t, observations, 2)
	assert.InDelta(t, 5.0, observations[1][1], 1e-12)
}

func TestReadObservations_CsvWithoutHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noheader.csv")
	require.NoError(t, os.WriteFile(path, []byte("1.0,2.0\n3.0,4.0\n"), 0o644))

	observations, err := ReadObservations(path)
	require.NoError(t, err)
	require.Len(t, observations, 2)
}

func TestReadObservations_UnsupportedExtension(t *testing.T) {
	_, err := ReadObservations("observations.parquet")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported input file type")
}
