/*******************************************************************************
* Contributors: BMC Helix, Inc.
*
* (c) Copyright 2020-2025 BMC Helix, Inc.

* SPDX-License-Identifier: Apache-2.0
*******************************************************************************/

package batch

import (
	"encoding/binary"
	"encoding/csv"
	"io"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"prognos/common/dto"
)

var npyMagic = []byte("\x93NUMPY")

var npyHeaderPattern = regexp.MustCompile(
	`'descr':\s*'([^']+)'.*'fortran_order':\s*(True|False).*'shape':\s*\(([^)]*)\)`)

// ReadObservations loads observations from a .npy or .csv file. A 1-D array
// yields a single observation, a 2-D array one observation per row.
func ReadObservations(path string) ([]dto.Observation, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".npy":
		return readNpy(path)
	case ".csv":
		return readCsv(path)
	default:
		return nil, errors.Errorf("unsupported input file type: %s", path)
	}
}

// readNpy parses the numpy v1 binary format for little-endian float64/float32
// arrays, the formats the training exports produce.
func readNpy(path string) ([]dto.Observation, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer file.Close()

	magic := make([]byte, 6)
	if _, err := io.ReadFull(file, magic); err != nil {
		return nil, errors.Wrapf(err, "failed to read npy magic from %s", path)
	}
	if string(magic) != string(npyMagic) {
		return nil, errors.Errorf("%s is not a npy file", path)
	}

	version := make([]byte, 2)
	if _, err := io.ReadFull(file, version); err != nil {
		return nil, errors.Wrapf(err, "failed to read npy version from %s", path)
	}
	if version[0] != 1 {
		return nil, errors.Errorf("unsupported npy version %d.%d in %s", version[0], version[1], path)
	}

	var headerLen uint16
	if err := binary.Read(file, binary.LittleEndian, &headerLen); err != nil {
		return nil, errors.Wrapf(err, "failed to read npy header length from %s", path)
	}
	header := make([]byte, headerLen)
	if _, err := io.ReadFull(file, header); err != nil {
		return nil, errors.Wrapf(err, "failed to read npy header from %s", path)
	}

	groups := npyHeaderPattern.FindStringSubmatch(string(header))
	if groups == nil {
		return nil, errors.Errorf("unparseable npy header in %s: %s", path, string(header))
	}
	descr := groups[1]
	if groups[2] == "True" {
		return nil, errors.Errorf("fortran-ordered npy arrays are not supported: %s", path)
	}
	shape, err := parseShape(groups[3])
	if err != nil {
		return nil, errors.Wrapf(err, "invalid npy shape in %s", path)
	}

	var itemSize int
	switch descr {
	case "<f8":
		itemSize = 8
	case "<f4":
		itemSize = 4
	default:
		return nil, errors.Errorf("unsupported npy dtype %s in %s", descr, path)
	}

	count := 1
	for _, dim := range shape {
		count *= dim
	}
	raw := make([]byte, count*itemSize)
	if _, err := io.ReadFull(file, raw); err != nil {
		return nil, errors.Wrapf(err, "truncated npy data in %s", path)
	}

	values := make([]float64, count)
	for i := 0; i < count; i++ {
		if itemSize == 8 {
			values[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[i*8:]))
		} else {
			values[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:])))
		}
	}

	switch len(shape) {
	case 1:
		return []dto.Observation{values}, nil
	case 2:
		rows, cols := shape[0], shape[1]
		observations := make([]dto.Observation, rows)
		for i := 0; i < rows; i++ {
			observations[i] = dto.Observation(values[i*cols : (i+1)*cols])
		}
		return observations, nil
	default:
		return nil, errors.Errorf("npy arrays must be 1-D or 2-D, got %d-D in %s", len(shape), path)
	}
}

func parseShape(raw string) ([]int, error) {
	parts := strings.Split(raw, ",")
	shape := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		dim, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		shape = append(shape, dim)
	}
	if len(shape) == 0 {
		return nil, errors.New("empty shape")
	}
	return shape, nil
}

// readCsv reads one observation per row. A non-numeric first row is treated
// as a header and skipped.
func readCsv(path string) ([]dto.Observation, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}

	observations := make([]dto.Observation, 0, len(records))
	for rowIdx, record := range records {
		observation := make(dto.Observation, 0, len(record))
		rowErr := error(nil)
		for _, field := range record {
			value, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				rowErr = err
				break
			}
			observation = append(observation, value)
		}
		if rowErr != nil {
			if rowIdx == 0 {
				continue // header row
			}
			return nil, errors.Wrapf(rowErr, "non-numeric value at row %d of %s", rowIdx+1, path)
		}
		observations = append(observations, observation)
	}
	if len(observations) == 0 {
		return nil, errors.Errorf("no observations found in %s", path)
	}
	return observations, nil
}
