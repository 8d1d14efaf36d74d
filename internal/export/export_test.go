// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package export

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type product struct {
	Name  string
	Price float64
}

var productCols = []Column[product]{
	{Header: "Nom", Value: func(p product) string { return p.Name }},
	{Header: "Prix", Value: func(p product) string { return strconv.FormatFloat(p.Price, 'f', 0, 64) }},
}

func sample() Table {
	return Build("Produits", productCols, []product{
		{Name: "Kit Arduino", Price: 25000},
		{Name: "=HYPERLINK(\"x\")", Price: 1},
	})
}

func TestBuild(t *testing.T) {
	tbl := sample()
	assert.Equal(t, []string{"Nom", "Prix"}, tbl.Header)
	require.Len(t, tbl.Rows, 2)
	assert.Equal(t, []string{"Kit Arduino", "25000"}, tbl.Rows[0])
}

func TestBuildEmpty(t *testing.T) {
	tbl := Build("Vide", productCols, nil)
	assert.Len(t, tbl.Header, 2)
	assert.Empty(t, tbl.Rows)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sample()))

	out := buf.String()
	require.True(t, strings.HasPrefix(out, "\ufeff"))

	records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(out, "\ufeff"))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"Nom", "Prix"}, records[0])
	assert.Equal(t, "'=HYPERLINK(\"x\")", records[2][0], "formula neutralized")
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sample()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Produits")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Nom", "Prix"}, rows[0])
	assert.Equal(t, "Kit Arduino", rows[1][0])
}

func TestWriteUnknownFormat(t *testing.T) {
	assert.Error(t, Write(&bytes.Buffer{}, "pdf", sample()))
}

func TestFilename(t *testing.T) {
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	assert.Equal(t, "formations-20260304-050607.csv", Filename("formations", FormatCSV, now))
}

func TestSheetName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Formations", "Formations"},
		{"a/b:c", "abc"},
		{"", "Export"},
		{strings.Repeat("x", 40), strings.Repeat("x", 31)},
	}
	for _, tt := range tests {
		if got := sheetName(tt.in); got != tt.want {
			t.Errorf("sheetName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "text/csv; charset=utf-8", ContentType(FormatCSV))
	assert.Contains(t, ContentType(FormatXLSX), "spreadsheetml")
}
